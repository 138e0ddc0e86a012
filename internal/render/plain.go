package render

import (
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
)

var (
	headingPrefix = regexp.MustCompile(`^#{1,6}\s+`)
	emphasisMarks = strings.NewReplacer("**", "", "__", "", "`", "")
)

// renderPlain writes the notes as wrapped lines. It prefers the configured
// TTF font; when that cannot be loaded it uses the built-in Helvetica and
// transliterates Cyrillic, since core fonts only cover cp1252.
func renderPlain(doc notesDoc, out string) error {
	pdf := newDocument(doc.title, doc.created)
	family := fontFamily
	translate := func(s string) string { return s }

	if err := loadFonts(pdf, doc.fonts); err != nil {
		pdf = newDocument(transliterate(doc.title), doc.created)
		family = "Helvetica"
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		translate = func(s string) string { return tr(transliterate(s)) }
	}
	pdf.AddPage()

	if doc.title != "" {
		pdf.SetFont(family, "B", 16)
		pdf.MultiCell(0, 8, translate(doc.title), "", "L", false)
		pdf.Ln(3)
	}

	pdf.SetFont(family, "", bodySize)
	for _, line := range plainLines(doc.markdown) {
		if line == "" {
			pdf.Ln(lineHeight / 2)
			continue
		}
		pdf.MultiCell(0, lineHeight, translate(line), "", "L", false)
	}
	return output(pdf, out)
}

func output(pdf *fpdf.Fpdf, out string) error {
	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

// plainLines strips the most visible Markdown markers and math delimiters.
func plainLines(markdown string) []string {
	markdown = ReplaceMath(strings.ReplaceAll(markdown, "\r\n", "\n"))
	raw := strings.Split(markdown, "\n")
	lines := make([]string, 0, len(raw))
	blank := false
	for _, line := range raw {
		line = strings.TrimRight(line, " \t")
		line = headingPrefix.ReplaceAllString(line, "")
		line = emphasisMarks.Replace(line)
		line = strings.NewReplacer(`\*`, "*", `\_`, "_", `\[`, "[", `\]`, "]", `\<`, "<", "\\`", "`").Replace(line)
		if strings.TrimSpace(line) == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e", 'ж': "zh", 'з': "z",
	'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o", 'п': "p", 'р': "r",
	'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "E", 'Ж': "Zh", 'З': "Z",
	'И': "I", 'Й': "Y", 'К': "K", 'Л': "L", 'М': "M", 'Н': "N", 'О': "O", 'П': "P", 'Р': "R",
	'С': "S", 'Т': "T", 'У': "U", 'Ф': "F", 'Х': "Kh", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Shch",
	'Ъ': "", 'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
	'•': "-", '◦': "-", '—': "-", '–': "-", '«': "\"", '»': "\"", '…': "...",
}

func transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := cyrillicLatin[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
