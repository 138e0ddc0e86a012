package notes

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lecturebot/internal/logging"
	"lecturebot/internal/render"
	"lecturebot/internal/services"
	"lecturebot/internal/session"
	"lecturebot/internal/textutil"
)

// Name prefixes of generated files.
const (
	ScanPrefix  = "Скан_"
	NotesPrefix = "Заметки_"
)

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Structurer rewrites a transcript into Markdown notes.
type Structurer interface {
	Structure(ctx context.Context, transcript string) (string, error)
}

// Renderer writes session PDFs.
type Renderer interface {
	NotesPDF(ctx context.Context, markdown, title, outPath string) (render.Strategy, error)
	ScanPDF(ctx context.Context, images []string, title, outPath string) (int, error)
}

// Kind identifies a generated artifact.
type Kind string

const (
	KindLecturePDF Kind = "lecture_pdf"
	KindScanPDF    Kind = "scan_pdf"
	KindNotes      Kind = "notes_md"
)

// Artifact is a generated local file ready for publication.
type Artifact struct {
	Kind      Kind
	LocalPath string
	Name      string
}

// Archived reports whether the artifact also gets a dated archive copy.
func (a Artifact) Archived() bool {
	return a.Kind == KindLecturePDF || a.Kind == KindScanPDF
}

// Result collects the artifacts and per-artifact failures of one build.
type Result struct {
	Artifacts  []Artifact
	Failures   []error
	Strategy   render.Strategy
	ScanPages  int
	Transcript string
}

// Pipeline produces session artifacts.
type Pipeline struct {
	transcriber Transcriber
	structurer  Structurer
	renderer    Renderer
	logger      *slog.Logger
}

// New constructs a Pipeline.
func New(transcriber Transcriber, structurer Structurer, renderer Renderer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		structurer:  structurer,
		renderer:    renderer,
		logger:      logging.NewComponentLogger(logger, "notes"),
	}
}

// Build generates every artifact sess calls for into outDir. topic must
// already be sanitized; it names the files and titles the PDFs.
func (p *Pipeline) Build(ctx context.Context, sess *session.UploadSession, topic, outDir string) Result {
	logger := logging.WithContext(ctx, p.logger)
	var res Result

	if art, ok := p.lecture(ctx, logger, sess.FirstAudioPath, topic, outDir, &res); ok {
		res.Artifacts = append(res.Artifacts, art)
	}

	if len(sess.ScanImages) > 0 {
		name := textutil.WithExt(ScanPrefix+topic, ".pdf")
		out := filepath.Join(outDir, name)
		pages, err := p.renderer.ScanPDF(ctx, sess.ScanImages, topic, out)
		if err != nil {
			p.fail(logger, &res, "scan pdf failed", "scan_pdf_failed", err)
		} else {
			res.ScanPages = pages
			res.Artifacts = append(res.Artifacts, Artifact{Kind: KindScanPDF, LocalPath: out, Name: name})
		}
	}

	if len(sess.TextNotes) > 0 {
		name := textutil.WithExt(NotesPrefix+topic, ".md")
		out := filepath.Join(outDir, name)
		if err := render.WriteNotesMarkdown(topic, sess.TextNotes, out); err != nil {
			p.fail(logger, &res, "notes markdown failed", "notes_markdown_failed", err)
		} else {
			res.Artifacts = append(res.Artifacts, Artifact{Kind: KindNotes, LocalPath: out, Name: name})
		}
	}
	return res
}

func (p *Pipeline) lecture(ctx context.Context, logger *slog.Logger, audio, topic, outDir string, res *Result) (Artifact, bool) {
	if audio == "" {
		return Artifact{}, false
	}
	if _, err := os.Stat(audio); err != nil {
		logger.Info("retained audio no longer on disk; skipping notes", logging.String("audio", filepath.Base(audio)))
		return Artifact{}, false
	}

	started := time.Now()
	transcript, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		p.fail(logger, res, "transcription failed", "transcription_failed",
			services.Wrap(services.ErrTranscription, "notes", "transcribe", filepath.Base(audio), err))
		return Artifact{}, false
	}
	res.Transcript = transcript
	logger.Info("audio transcribed",
		logging.Int("chars", len([]rune(transcript))),
		logging.Duration("elapsed", time.Since(started)),
	)

	structured, err := p.structurer.Structure(ctx, transcript)
	if err != nil {
		p.fail(logger, res, "structuring failed", "structuring_failed",
			services.Wrap(services.ErrStructuring, "notes", "structure", "", err))
		return Artifact{}, false
	}

	name := textutil.WithExt(topic, ".pdf")
	out := filepath.Join(outDir, name)
	strategy, err := p.renderer.NotesPDF(ctx, structured, topic, out)
	if err != nil {
		p.fail(logger, res, "notes pdf failed", "notes_pdf_failed", err)
		return Artifact{}, false
	}
	res.Strategy = strategy
	return Artifact{Kind: KindLecturePDF, LocalPath: out, Name: name}, true
}

func (p *Pipeline) fail(logger *slog.Logger, res *Result, msg, event string, err error) {
	res.Failures = append(res.Failures, err)
	logging.WarnWithContext(logger, msg, event,
		logging.String(logging.FieldImpact, "artifact skipped; other materials still publish"),
		logging.Error(err),
	)
}
