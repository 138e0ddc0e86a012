package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"lecturebot/internal/logging"
	"lecturebot/internal/services"
)

const scanMarginMM = 10.0

// Placement is the position and size of an image on a page, in mm.
type Placement struct {
	X, Y, W, H float64
}

// FitImage scales an imgW x imgH image to fit inside a pageW x pageH page
// with margin on every side, keeping the aspect ratio, and centers it.
func FitImage(imgW, imgH, pageW, pageH, margin float64) Placement {
	boxW := pageW - 2*margin
	boxH := pageH - 2*margin
	if imgW <= 0 || imgH <= 0 || boxW <= 0 || boxH <= 0 {
		return Placement{X: margin, Y: margin}
	}
	scale := min(boxW/imgW, boxH/imgH)
	w := imgW * scale
	h := imgH * scale
	return Placement{
		X: margin + (boxW-w)/2,
		Y: margin + (boxH-h)/2,
		W: w,
		H: h,
	}
}

// ScanPDF writes one page per image in order and returns the page count.
// Images that cannot be decoded are skipped with a warning; an error is
// returned when none are usable.
func (r *Renderer) ScanPDF(ctx context.Context, images []string, title, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, services.Wrap(services.ErrRender, "render", "scan pdf", "create output dir", err)
	}
	pdf := fpdf.New("P", "mm", pageSize, "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(strings.TrimSpace(title), true)
	pdf.SetCreator(creator, true)
	pdf.SetCreationDate(r.now())
	pageW, pageH := pdf.GetPageSize()

	pages := 0
	for _, path := range images {
		imgType, w, h, err := probeImage(path)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, r.logger), "scan image skipped", "scan_image_skipped",
				logging.String("image", filepath.Base(path)),
				logging.String(logging.FieldImpact, "page missing from scan PDF"),
				logging.Error(err),
			)
			continue
		}
		opts := fpdf.ImageOptions{ImageType: imgType}
		pdf.RegisterImageOptions(path, opts)
		if pdf.Err() {
			return 0, services.Wrap(services.ErrRender, "render", "scan pdf", filepath.Base(path), pdf.Error())
		}
		place := FitImage(float64(w), float64(h), pageW, pageH, scanMarginMM)
		pdf.AddPage()
		pdf.ImageOptions(path, place.X, place.Y, place.W, place.H, false, opts, 0, "")
		pages++
	}
	if pages == 0 {
		return 0, services.Wrap(services.ErrRender, "render", "scan pdf", "no usable images", nil)
	}
	if err := output(pdf, outPath); err != nil {
		return 0, services.Wrap(services.ErrRender, "render", "scan pdf", "write pdf", err)
	}
	return pages, nil
}

// probeImage returns the fpdf image type and pixel size of path.
func probeImage(path string) (string, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, 0, err
	}
	defer file.Close()
	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return "", 0, 0, fmt.Errorf("decode image: %w", err)
	}
	switch format {
	case "jpeg":
		return "JPG", cfg.Width, cfg.Height, nil
	case "png":
		return "PNG", cfg.Width, cfg.Height, nil
	case "gif":
		return "GIF", cfg.Width, cfg.Height, nil
	default:
		return "", 0, 0, fmt.Errorf("unsupported image format %q", format)
	}
}
