// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and returns a Result; helpers on Result answer the
// questions the upload pipeline asks of an audio file: does it carry audio,
// which codec does the first audio stream use, and how long is it.
package ffprobe
