package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"lecturebot/internal/logging"
	"lecturebot/internal/services"
)

const (
	pageSize   = "A4"
	marginMM   = 20.0
	creator    = "lecturebot"
	fontFamily = "DejaVu"
	monoFamily = "DejaVuMono"
)

// Fonts lists the TTF files used by the rich renderer.
type Fonts struct {
	Regular string
	Bold    string
	Mono    string
}

// Strategy names the renderer that produced a notes PDF.
type Strategy string

const (
	StrategyRich  Strategy = "rich"
	StrategyPlain Strategy = "plain"
)

// Renderer builds session PDFs.
type Renderer struct {
	fonts  Fonts
	logger *slog.Logger
	now    func() time.Time
	rich   func(doc notesDoc, out string) error
	plain  func(doc notesDoc, out string) error
}

type notesDoc struct {
	title    string
	markdown string
	fonts    Fonts
	created  time.Time
}

// New constructs a Renderer.
func New(fonts Fonts, logger *slog.Logger) *Renderer {
	return &Renderer{
		fonts:  fonts,
		logger: logging.NewComponentLogger(logger, "render"),
		now:    time.Now,
		rich:   renderRich,
		plain:  renderPlain,
	}
}

// NotesPDF renders markdown into outPath titled title. The rich renderer is
// tried first; any failure there is logged and the plain renderer is used.
// The returned error is non-nil only when the output file cannot be written.
func (r *Renderer) NotesPDF(ctx context.Context, markdown, title, outPath string) (Strategy, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", services.Wrap(services.ErrRender, "render", "notes pdf", "create output dir", err)
	}
	doc := notesDoc{title: strings.TrimSpace(title), markdown: markdown, fonts: r.fonts, created: r.now()}

	richErr := safely(func() error { return r.rich(doc, outPath) })
	if richErr == nil {
		return StrategyRich, nil
	}
	_ = os.Remove(outPath)
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "rich pdf rendering failed; using plain renderer", "render_fallback",
		logging.String(logging.FieldErrorHint, "check render.font_* paths and the structured markdown"),
		logging.String(logging.FieldImpact, "notes PDF is rendered without formatting"),
		logging.Error(services.Wrap(services.ErrRender, "render", "rich", "", richErr)),
	)

	if err := safely(func() error { return r.plain(doc, outPath) }); err != nil {
		return "", services.Wrap(services.ErrRender, "render", "plain", "write pdf", err)
	}
	return StrategyPlain, nil
}

// safely converts a panic inside a PDF library call into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("renderer panic: %v", rec)
		}
	}()
	return fn()
}

func newDocument(title string, created time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", pageSize, "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle(title, true)
	pdf.SetCreator(creator, true)
	pdf.SetCreationDate(created)
	return pdf
}

// loadFonts registers the TTF families and reports the first load error.
func loadFonts(pdf *fpdf.Fpdf, fonts Fonts) error {
	for _, f := range []struct{ family, style, path string }{
		{fontFamily, "", fonts.Regular},
		{fontFamily, "B", fonts.Bold},
		{monoFamily, "", fonts.Mono},
	} {
		if strings.TrimSpace(f.path) == "" {
			return fmt.Errorf("font %s%s not configured", f.family, f.style)
		}
		// AddUTF8Font resolves paths against the font directory, so absolute
		// paths are read here and registered from bytes.
		data, err := os.ReadFile(f.path)
		if err != nil {
			return fmt.Errorf("font %s: %w", f.path, err)
		}
		pdf.AddUTF8FontFromBytes(f.family, f.style, data)
		if pdf.Err() {
			return fmt.Errorf("load font %s: %w", f.path, pdf.Error())
		}
	}
	return nil
}
