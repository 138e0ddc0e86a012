// Package render produces the PDF and Markdown artifacts of an upload
// session.
//
// NotesPDF renders structured Markdown with two strategies: the rich
// renderer walks a goldmark AST and lays it out with TTF fonts; if it fails
// for any reason the plain renderer writes wrapped lines instead. The plain
// renderer falls back to a built-in font (with transliteration) when the TTF
// fonts cannot be loaded, so only local filesystem errors escape.
//
// ScanPDF places one image per A4 page, scaled to fit inside the margins
// with its aspect ratio kept, and centered. NotesMarkdown joins free-text
// notes under a topic heading.
package render
