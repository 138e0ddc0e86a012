package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"lecturebot/internal/chat"
	"lecturebot/internal/fileutil"
	"lecturebot/internal/logging"
	"lecturebot/internal/services"
	"lecturebot/internal/session"
	"lecturebot/internal/textutil"
)

// Outcome describes what happened to an inbound message.
type Outcome string

const (
	// Accepted: the attachment was stored as a collected file.
	Accepted Outcome = "accepted"
	// AudioDiscarded: the session already holds an audio file.
	AudioDiscarded Outcome = "audio_discarded"
	// ScanAdded: a photo was appended to the scan.
	ScanAdded Outcome = "scan_added"
	// ScanRejected: scan mode received something other than an image.
	ScanRejected Outcome = "scan_rejected"
	// NoteAdded: a text note was stored.
	NoteAdded Outcome = "note_added"
	// Ignored: the session is not collecting files, or it was reset
	// while the attachment was being processed.
	Ignored Outcome = "ignored"
)

// Normalizer converts audio to the canonical format. It returns a usable
// path even when it also returns an error.
type Normalizer interface {
	Normalize(ctx context.Context, path string) (string, error)
}

// Limits are per-kind byte ceilings. Zero disables a ceiling.
type Limits struct {
	AudioBytes    int64
	DocumentBytes int64
}

// Options configures a Pipeline.
type Options struct {
	AudioExt []string
	Limits   Limits
}

// Pipeline applies inbound messages to upload sessions.
type Pipeline struct {
	sessions   *session.Store
	downloader chat.Downloader
	normalizer Normalizer
	opts       Options
	logger     *slog.Logger
}

// New constructs a Pipeline.
func New(sessions *session.Store, downloader chat.Downloader, normalizer Normalizer, opts Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		sessions:   sessions,
		downloader: downloader,
		normalizer: normalizer,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "intake"),
	}
}

// AddNote stores text as a note when the user's session is collecting files.
func (p *Pipeline) AddNote(ctx context.Context, userID, chatID int64, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Ignored, nil
	}
	outcome := Ignored
	_, err := p.sessions.Update(userID, chatID, func(s *session.UploadSession) error {
		if !s.Mode.Uploading() {
			return nil
		}
		if s.Mode == session.UploadingScan {
			outcome = ScanRejected
			return nil
		}
		s.AddNote(text)
		outcome = NoteAdded
		return nil
	})
	return outcome, err
}

// AddAttachment downloads att and records it on the user's session.
// Download and size failures are returned as ErrDownload or ErrValidation;
// the session is left unchanged in that case.
func (p *Pipeline) AddAttachment(ctx context.Context, userID, chatID int64, att chat.Attachment) (Outcome, error) {
	snap := p.sessions.Snapshot(userID, chatID)
	if !snap.Mode.Uploading() {
		return Ignored, nil
	}
	kind := Classify(att, p.opts.AudioExt)
	scan := snap.Mode == session.UploadingScan
	if scan && kind != session.KindImage {
		return ScanRejected, nil
	}
	if !scan && kind == session.KindAudio && snap.FirstAudioPath != "" {
		return AudioDiscarded, nil
	}

	logger := logging.WithContext(services.WithSessionID(ctx, snap.ID), p.logger)
	name := textutil.SanitizeFileName(displayName(att))
	local, err := p.download(ctx, snap.TempDir, name, att, p.limitFor(kind))
	if err != nil {
		logging.WarnWithContext(logger, "attachment download failed", "intake_download_failed",
			logging.String("file_name", name),
			logging.String(logging.FieldImpact, "attachment not added to session"),
			logging.Error(err),
		)
		return Ignored, err
	}

	if kind == session.KindAudio && !scan {
		converted, convErr := p.normalizer.Normalize(ctx, local)
		if convErr != nil {
			logger.Debug("keeping original audio", logging.Error(convErr))
		}
		if converted != local {
			_, ext := textutil.SplitExt(converted)
			stem, _ := textutil.SplitExt(name)
			name = textutil.WithExt(stem, ext)
			local = converted
		}
	}

	outcome := Ignored
	_, err = p.sessions.Update(userID, chatID, func(s *session.UploadSession) error {
		if s.ID != snap.ID || !s.Mode.Uploading() {
			return nil
		}
		switch {
		case s.Mode == session.UploadingScan:
			if kind != session.KindImage {
				outcome = ScanRejected
				return nil
			}
			s.AddScanImage(local)
			outcome = ScanAdded
		case kind == session.KindAudio:
			if !s.ClaimAudio(local) {
				outcome = AudioDiscarded
				return nil
			}
			s.AddFile(session.CollectedFile{LocalPath: local, DisplayName: name, Kind: kind})
			outcome = Accepted
		default:
			s.AddFile(session.CollectedFile{LocalPath: local, DisplayName: name, Kind: kind})
			outcome = Accepted
		}
		return nil
	})
	if outcome != Accepted && outcome != ScanAdded {
		_ = os.Remove(local)
		if outcome == Ignored {
			_ = os.Remove(filepath.Dir(local))
			logger.Info("discarding attachment for reset session", logging.String("file_name", name))
		}
	} else {
		logger.Info("attachment collected",
			logging.String("file_name", name),
			logging.String("kind", string(kind)),
			logging.String("outcome", string(outcome)),
		)
	}
	return outcome, err
}

func (p *Pipeline) limitFor(kind session.Kind) int64 {
	if kind == session.KindAudio {
		return p.opts.Limits.AudioBytes
	}
	return p.opts.Limits.DocumentBytes
}

// download stores the attachment under dir with a random prefix so repeated
// names never collide locally.
func (p *Pipeline) download(ctx context.Context, dir, name string, att chat.Attachment, limit int64) (string, error) {
	if limit > 0 && att.Size > limit {
		return "", services.Wrap(services.ErrValidation, "intake", "download",
			fmt.Sprintf("%s is %d bytes, limit %d", name, att.Size, limit), fileutil.ErrTooLarge)
	}
	if dir == "" {
		dir = os.TempDir()
	}
	body, err := p.downloader.Open(ctx, att.FileID)
	if err != nil {
		return "", services.Wrap(services.ErrDownload, "intake", "download", name, err)
	}
	defer body.Close()

	local := filepath.Join(dir, uuid.NewString()[:8]+"_"+name)
	if _, err := fileutil.WriteLimited(local, body, limit); err != nil {
		if errors.Is(err, fileutil.ErrTooLarge) {
			return "", services.Wrap(services.ErrValidation, "intake", "download", name, err)
		}
		return "", services.Wrap(services.ErrDownload, "intake", "download", name, err)
	}
	return local, nil
}
