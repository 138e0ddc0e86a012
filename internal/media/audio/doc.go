// Package audio normalizes uploaded lecture recordings to MP3 so the
// speech-to-text service always receives the same container.
//
// Normalizer.Normalize probes the file with ffprobe (falling back to the file
// extension when ffprobe is unavailable) and transcodes anything that is not
// already MP3 with ffmpeg's libmp3lame encoder. Conversion fails soft: the
// original path is returned together with an error tagged
// services.ErrConversion.
package audio
