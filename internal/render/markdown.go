package render

import (
	"os"
	"path/filepath"
	"strings"

	"lecturebot/internal/services"
)

// NotesMarkdown joins text notes with blank lines under a "# {topic}"
// heading. Notes are kept verbatim apart from surrounding blank lines.
func NotesMarkdown(topic string, notes []string) string {
	var b strings.Builder
	if topic = strings.TrimSpace(topic); topic != "" {
		b.WriteString("# ")
		b.WriteString(topic)
		b.WriteString("\n\n")
	}
	parts := make([]string, 0, len(notes))
	for _, note := range notes {
		note = strings.Trim(note, "\r\n")
		if strings.TrimSpace(note) == "" {
			continue
		}
		parts = append(parts, note)
	}
	b.WriteString(strings.Join(parts, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

// WriteNotesMarkdown writes NotesMarkdown to outPath.
func WriteNotesMarkdown(topic string, notes []string, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return services.Wrap(services.ErrRender, "render", "notes markdown", "create output dir", err)
	}
	if err := os.WriteFile(outPath, []byte(NotesMarkdown(topic, notes)), 0o644); err != nil {
		return services.Wrap(services.ErrRender, "render", "notes markdown", "write file", err)
	}
	return nil
}
