package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"lecturebot/internal/logging"
	"lecturebot/internal/media/ffprobe"
	"lecturebot/internal/services"
	"lecturebot/internal/textutil"
)

// DefaultBitrate is the MP3 bitrate used when none is configured.
const DefaultBitrate = "192k"

// Options configures a Normalizer.
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	Bitrate       string
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type probeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Normalizer converts audio files to MP3.
type Normalizer struct {
	opts   Options
	logger *slog.Logger
	run    runFunc
	probe  probeFunc
}

// NewNormalizer constructs a Normalizer with defaults applied.
func NewNormalizer(opts Options, logger *slog.Logger) *Normalizer {
	if strings.TrimSpace(opts.FFmpegBinary) == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(opts.FFprobeBinary) == "" {
		opts.FFprobeBinary = "ffprobe"
	}
	if strings.TrimSpace(opts.Bitrate) == "" {
		opts.Bitrate = DefaultBitrate
	}
	return &Normalizer{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "audio"),
		run:    runCommand,
		probe:  ffprobe.Inspect,
	}
}

// Normalize returns the path of an MP3 rendition of path. Files that are
// already MP3 are returned untouched. When conversion fails the original
// path is returned alongside a conversion error; callers keep using it.
func (n *Normalizer) Normalize(ctx context.Context, path string) (string, error) {
	if !n.needsConversion(ctx, path) {
		return path, nil
	}

	out := mp3Path(path)
	args := []string{"-y", "-i", path, "-vn", "-acodec", "libmp3lame", "-b:a", n.opts.Bitrate, out}
	if output, err := n.run(ctx, n.opts.FFmpegBinary, args...); err != nil {
		_ = os.Remove(out)
		wrapped := services.Wrap(services.ErrConversion, "audio", "ffmpeg", "convert to mp3",
			fmt.Errorf("%w: %s", err, summarize(output)))
		logging.WarnWithContext(logging.WithContext(ctx, n.logger), "audio conversion failed; keeping original file", "audio_conversion_failed",
			logging.String(logging.FieldErrorHint, "check that ffmpeg is installed with libmp3lame"),
			logging.String(logging.FieldImpact, "original audio is transcribed as uploaded"),
			logging.String("source", filepath.Base(path)),
			logging.Error(wrapped),
		)
		return path, wrapped
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		n.logger.Debug("remove source audio failed", logging.String("source", path), logging.Error(err))
	}
	n.logger.Info("audio converted to mp3",
		logging.String(logging.FieldEventType, "audio_converted"),
		logging.String("output", filepath.Base(out)),
	)
	return out, nil
}

func (n *Normalizer) needsConversion(ctx context.Context, path string) bool {
	result, err := n.probe(ctx, n.opts.FFprobeBinary, path)
	if err != nil {
		n.logger.Debug("ffprobe unavailable; using extension", logging.Error(err))
		return !strings.EqualFold(filepath.Ext(path), ".mp3")
	}
	n.logger.Debug("audio probed",
		logging.String("source", filepath.Base(path)),
		logging.String("codec", result.AudioCodec()),
		logging.Int("audio_streams", result.AudioStreamCount()),
		logging.String("duration", fmt.Sprintf("%.1fs", result.DurationSeconds())),
	)
	return !result.IsMP3()
}

// mp3Path picks the output path next to the source. A mislabeled ".mp3"
// source gets a distinct name so ffmpeg never reads and writes one file.
func mp3Path(path string) string {
	dir := filepath.Dir(path)
	stem, ext := textutil.SplitExt(filepath.Base(path))
	stem = textutil.SanitizeFileName(stem)
	if strings.EqualFold(ext, ".mp3") {
		stem += "_converted"
	}
	return filepath.Join(dir, stem+".mp3")
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func summarize(output []byte) string {
	text := strings.TrimSpace(string(output))
	lines := strings.Split(text, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " | ")
}
