package workflow

import (
	"context"
	"fmt"
	"strings"

	"lecturebot/internal/chat"
	"lecturebot/internal/intake"
	"lecturebot/internal/logging"
	"lecturebot/internal/services"
	"lecturebot/internal/session"
)

func (c *Controller) handleGroupMessage(ctx context.Context, msg chat.Message) {
	if msg.FromBot || !c.deps.Library.Serves(msg.ChatID) {
		return
	}
	_, _ = c.deps.Library.Repost(ctx, msg.ChatID)
}

func (c *Controller) handlePrivateMessage(ctx context.Context, msg chat.Message) {
	if msg.FromBot {
		return
	}
	if msg.Command != "" {
		c.handleCommand(ctx, msg)
		return
	}
	if msg.Attachment != nil {
		c.handleAttachment(ctx, msg)
		return
	}

	snap := c.deps.Sessions.Snapshot(msg.UserID, msg.ChatID)
	switch {
	case snap.Mode == session.EnteringTopic:
		c.publish(ctx, msg, snap)
	case snap.Mode.Uploading():
		outcome, err := c.deps.Intake.AddNote(ctx, msg.UserID, msg.ChatID, msg.Text)
		if err != nil {
			c.reply(ctx, msg.ChatID, services.UserMessage(err))
			return
		}
		switch outcome {
		case intake.NoteAdded:
			c.reply(ctx, msg.ChatID, textNoteAdded)
		case intake.ScanRejected:
			c.reply(ctx, msg.ChatID, textScanRejected)
		}
	}
}

func (c *Controller) handleCommand(ctx context.Context, msg chat.Message) {
	switch msg.Command {
	case CommandStart:
		c.showMenu(ctx, msg.UserID, msg.ChatID, 0)
	case CommandCancel:
		c.discard(ctx, msg.UserID, msg.ChatID)
		c.showMenu(ctx, msg.UserID, msg.ChatID, 0)
	case CommandSync:
		c.sync(ctx, msg)
	}
}

func (c *Controller) sync(ctx context.Context, msg chat.Message) {
	if !c.cfg.IsAdmin(msg.UserID) {
		c.reply(ctx, msg.ChatID, textNotAllowed)
		return
	}
	statusID := c.send(ctx, chat.Outgoing{ChatID: msg.ChatID, Text: textSyncStarted})
	report, err := c.deps.Library.Cache().Sync(ctx, c.deps.Library.Disciplines())
	text := fmt.Sprintf("✅ Синхронизировано дисциплин: %d", len(report.Linked))
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "library sync failed", "library_sync_failed",
			logging.String(logging.FieldImpact, "share links were not refreshed"),
			logging.Error(err),
		)
		text = "⚠️ Синхронизация не удалась: хранилище недоступно."
	} else if len(report.Failed) > 0 {
		failed := make([]string, 0, len(report.Failed))
		for name := range report.Failed {
			failed = append(failed, name)
		}
		text += fmt.Sprintf("\n⚠️ Ошибки: %s", strings.Join(failed, ", "))
	}
	c.edit(ctx, chat.Outgoing{ChatID: msg.ChatID, MessageID: statusID, Text: text})
	if target := c.deps.Library.TargetChatID(); target != 0 && err == nil {
		_, _ = c.deps.Library.Repost(ctx, target)
	}
}

func (c *Controller) handleAttachment(ctx context.Context, msg chat.Message) {
	outcome, err := c.deps.Intake.AddAttachment(ctx, msg.UserID, msg.ChatID, *msg.Attachment)
	if err != nil {
		c.reply(ctx, msg.ChatID, services.UserMessage(err))
		return
	}
	switch outcome {
	case intake.Accepted:
		c.reply(ctx, msg.ChatID, textAccepted)
	case intake.AudioDiscarded:
		c.reply(ctx, msg.ChatID, textAudioDiscarded)
	case intake.ScanAdded:
		c.reply(ctx, msg.ChatID, textScanAdded)
	case intake.ScanRejected:
		c.reply(ctx, msg.ChatID, textScanRejected)
	}
}
