package textutil

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultFileName is returned when nothing usable survives sanitization.
const DefaultFileName = "file"

var fileNameReplacer = strings.NewReplacer(
	"\\", "_",
	"/", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"\n", "_",
	"\r", "_",
	"\t", "_",
)

// SanitizeFileName replaces characters that are unsafe in file names with
// underscores and trims surrounding spaces and dots. Text is normalized to
// NFC so names typed on different clients compare equal on the server.
// Returns DefaultFileName when the result would be empty.
func SanitizeFileName(name string) string {
	out := SanitizeSegment(name)
	if out == "" {
		return DefaultFileName
	}
	return out
}

// SanitizeSegment is SanitizeFileName without the default, so callers can
// detect input that sanitizes to nothing.
func SanitizeSegment(name string) string {
	name = norm.NFC.String(name)
	name = fileNameReplacer.Replace(name)
	return strings.Trim(name, " .")
}

// SplitExt splits name into stem and extension (including the dot).
// Leading-dot names such as ".env" have no extension.
func SplitExt(name string) (string, string) {
	ext := path.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// WithExt sanitizes stem and appends ext.
func WithExt(stem, ext string) string {
	return SanitizeFileName(stem) + ext
}

// ArchiveDate converts a dd.mm.YYYY session date into the dd_mm_YYYY form
// used in archive file names.
func ArchiveDate(date string) string {
	return strings.ReplaceAll(date, ".", "_")
}
