package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result holds the streams and container of an uploaded audio file.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is the subset of ffprobe stream fields audio detection reads.
type Stream struct {
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
}

// Format is the container part of the probe.
type Format struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner",
		"-show_entries", "stream=codec_name,codec_type:format=duration,format_name",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return Parse(output)
}

// Parse decodes raw ffprobe JSON output.
func Parse(output []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// AudioCodec returns the lowercase codec name of the first audio stream, or
// an empty string when the container has no audio.
func (r Result) AudioCodec() string {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return strings.ToLower(strings.TrimSpace(stream.CodecName))
		}
	}
	return ""
}

// IsMP3 reports whether the container is a plain MP3 file.
func (r Result) IsMP3() bool {
	if r.AudioCodec() != "mp3" {
		return false
	}
	for _, name := range strings.Split(r.Format.FormatName, ",") {
		if strings.TrimSpace(name) == "mp3" {
			return true
		}
	}
	return false
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
