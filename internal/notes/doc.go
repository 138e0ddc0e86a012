// Package notes builds the generated artifacts of an upload session at
// topic-entry time: the lecture notes PDF from the retained audio, the scan
// PDF from collected photos, and the Markdown file of text notes.
//
// Each artifact is produced independently. A failed transcription skips
// structuring and the notes PDF but leaves the scan and text notes intact;
// failures are reported on the Result, never returned as a single error.
package notes
