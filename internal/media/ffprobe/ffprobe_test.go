package ffprobe

import (
	"math"
	"testing"
)

const wavProbe = `{
  "streams": [{"index": 0, "codec_name": "pcm_s16le", "codec_type": "audio", "sample_rate": "44100", "channels": 2}],
  "format": {"filename": "a.wav", "nb_streams": 1, "duration": "61.500000", "size": "10848044", "format_name": "wav"}
}`

const mp3Probe = `{
  "streams": [
    {"index": 0, "codec_name": "mp3", "codec_type": "audio"},
    {"index": 1, "codec_name": "mjpeg", "codec_type": "video"}
  ],
  "format": {"format_name": "mp3", "duration": "12.0"}
}`

func TestParseWav(t *testing.T) {
	result, err := Parse([]byte(wavProbe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.AudioCodec() != "pcm_s16le" {
		t.Fatalf("unexpected codec %q", result.AudioCodec())
	}
	if result.IsMP3() {
		t.Fatal("wav must not be reported as mp3")
	}
	if result.DurationSeconds() != 61.5 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
}

func TestParseMP3WithCoverArt(t *testing.T) {
	result, err := Parse([]byte(mp3Probe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.IsMP3() {
		t.Fatal("expected mp3")
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
}

func TestMP3CodecInsideMP4IsNotCanonical(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", CodecName: "mp3"}},
		Format:  Format{FormatName: "mov,mp4,m4a,3gp,3g2,mj2"},
	}
	if result.IsMP3() {
		t.Fatal("mp3 stream in mp4 container must be converted")
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if (Result{}).DurationSeconds() != 0 {
		t.Fatal("expected zero duration for empty result")
	}
	if (Result{}).AudioCodec() != "" {
		t.Fatal("expected empty codec without streams")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
