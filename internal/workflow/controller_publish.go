package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"lecturebot/internal/chat"
	"lecturebot/internal/logging"
	"lecturebot/internal/notes"
	"lecturebot/internal/notifications"
	"lecturebot/internal/publish"
	"lecturebot/internal/services"
	"lecturebot/internal/session"
	"lecturebot/internal/state"
	"lecturebot/internal/textutil"
)

const maxTopicRunes = 120

// normalizeTopic turns user input into a file-name-safe topic, or "" when
// nothing usable remains.
func normalizeTopic(text string) string {
	topic := textutil.SanitizeSegment(strings.Join(strings.Fields(text), " "))
	if runes := []rune(topic); len(runes) > maxTopicRunes {
		topic = strings.TrimSpace(string(runes[:maxTopicRunes]))
	}
	return topic
}

// publish finishes the session in snap: it generates artifacts, uploads
// everything and returns the user to the library menu.
func (c *Controller) publish(ctx context.Context, msg chat.Message, snap *session.UploadSession) {
	topic := normalizeTopic(msg.Text)
	if topic == "" {
		c.reply(ctx, msg.ChatID, textTopicInvalid)
		return
	}
	ctx = services.WithSessionID(ctx, snap.ID)
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()
	logger.Info("publishing session",
		logging.String("discipline", snap.Discipline),
		logging.String("lesson_type", string(snap.LessonType)),
		logging.Int("files", len(snap.CollectedFiles)),
		logging.Int("scan_images", len(snap.ScanImages)),
		logging.Int("notes", len(snap.TextNotes)),
		logging.Bool("audio", snap.FirstAudioPath != ""),
	)

	statusID := c.send(ctx, chat.Outgoing{ChatID: msg.ChatID, Text: textPublishing})

	built := c.deps.Notes.Build(ctx, snap, topic, filepath.Join(snap.TempDir, "out"))

	if current := c.deps.Sessions.Snapshot(msg.UserID, msg.ChatID); current.ID != snap.ID {
		logger.Info("session reset during processing; publication dropped")
		c.edit(ctx, chat.Outgoing{ChatID: msg.ChatID, MessageID: statusID, Text: textPublishCancelled})
		return
	}

	report := c.deps.Publisher.Publish(ctx, publish.Request{
		Discipline:  snap.Discipline,
		SessionDate: snap.SessionDate,
		LessonType:  string(snap.LessonType),
		Items:       publishItems(snap, built, topic),
	})

	notices := make([]string, 0, len(built.Failures))
	for _, err := range built.Failures {
		if notice := services.UserMessage(err); !slices.Contains(notices, notice) {
			notices = append(notices, notice)
		}
	}
	c.edit(ctx, chat.Outgoing{
		ChatID:    msg.ChatID,
		MessageID: statusID,
		Text:      summaryText(report, notices),
		HTML:      true,
		NoPreview: true,
	})

	logger.Info("session published",
		logging.Int("uploaded", len(report.Uploaded)),
		logging.Int("archived", len(report.Archived)),
		logging.Int("total", report.Total),
		logging.Int("failures", len(report.Failures)+len(built.Failures)),
		logging.String("render_strategy", string(built.Strategy)),
		logging.Duration("elapsed", time.Since(started)),
	)
	c.record(ctx, msg.UserID, snap, topic, report, built)

	_, _ = c.deps.Sessions.Update(msg.UserID, msg.ChatID, func(s *session.UploadSession) error {
		if s.ID == snap.ID {
			s.Cancel()
		}
		return nil
	})
	c.showMenu(ctx, msg.UserID, msg.ChatID, 0)
	if target := c.deps.Library.TargetChatID(); target != 0 {
		_, _ = c.deps.Library.Repost(ctx, target)
	}
}

// publishItems lists generated artifacts first, then the raw uploads.
func publishItems(snap *session.UploadSession, built notes.Result, topic string) []publish.Item {
	items := make([]publish.Item, 0, len(built.Artifacts)+len(snap.CollectedFiles))
	for _, art := range built.Artifacts {
		item := publish.Item{LocalPath: art.LocalPath, Name: art.Name}
		switch art.Kind {
		case notes.KindLecturePDF:
			item.Archive = art.Name
		case notes.KindScanPDF:
			item.Archive = textutil.WithExt(topic, ".pdf")
			item.ArchivePrefix = notes.ScanPrefix
		}
		items = append(items, item)
	}
	for _, f := range snap.CollectedFiles {
		items = append(items, publish.Item{LocalPath: f.LocalPath, Name: f.DisplayName})
	}
	return items
}

func (c *Controller) record(ctx context.Context, userID int64, snap *session.UploadSession, topic string, report publish.Report, built notes.Result) {
	if c.deps.History != nil {
		_, err := c.deps.History.RecordPublication(ctx, state.Publication{
			UserID:      userID,
			Discipline:  snap.Discipline,
			SessionDate: snap.SessionDate,
			LessonType:  string(snap.LessonType),
			Topic:       topic,
			Uploaded:    len(report.Uploaded),
			Total:       report.Total,
			FolderURL:   report.LessonShare,
		})
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, c.logger), "record publication failed", "history_write_failed",
				logging.String(logging.FieldImpact, "publication missing from history"),
				logging.Error(err),
			)
		}
	}

	if err := c.deps.Notifier.NotifyPublished(ctx, notifications.Publication{
		Discipline: snap.Discipline,
		LessonType: string(snap.LessonType),
		Topic:      topic,
		Uploaded:   len(report.Uploaded),
		Total:      report.Total,
		FolderURL:  report.LessonShare,
	}); err != nil {
		c.logger.Debug("publication notification failed", logging.Error(err))
	}

	label := fmt.Sprintf("%s / %s", snap.Discipline, topic)
	for _, err := range append(slices.Clone(built.Failures), report.Err()) {
		if err == nil {
			continue
		}
		if nerr := c.deps.Notifier.NotifyError(ctx, err, label); nerr != nil {
			c.logger.Debug("error notification failed", logging.Error(nerr))
		}
	}
}
