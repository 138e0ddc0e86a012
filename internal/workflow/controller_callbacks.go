package workflow

import (
	"context"
	"errors"
	"fmt"

	"lecturebot/internal/chat"
	"lecturebot/internal/library"
	"lecturebot/internal/logging"
	"lecturebot/internal/session"
)

func (c *Controller) handleGroupCallback(ctx context.Context, cb chat.Callback) {
	if cb.Data != ActionRefresh || !c.deps.Library.Serves(cb.ChatID) {
		c.answer(ctx, cb.ID, "")
		return
	}
	err := c.deps.Messenger.Edit(ctx, chat.Outgoing{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		Text:      c.deps.Library.Text(ctx),
		Keyboard:  library.GroupKeyboard(),
		HTML:      true,
		NoPreview: true,
	})
	if err != nil {
		c.logger.Debug("group library edit failed; reposting")
		_, _ = c.deps.Library.Repost(ctx, cb.ChatID)
	}
	c.answer(ctx, cb.ID, textRefreshed)
}

func (c *Controller) handlePrivateCallback(ctx context.Context, cb chat.Callback) {
	switch {
	case cb.Data == ActionRefresh:
		c.showMenu(ctx, cb.UserID, cb.ChatID, cb.MessageID)
		c.answer(ctx, cb.ID, textRefreshed)
		return
	case cb.Data == ActionAdd:
		c.startUpload(ctx, cb)
	case cb.Data == ActionBack:
		c.discard(ctx, cb.UserID, cb.ChatID)
		c.showMenu(ctx, cb.UserID, cb.ChatID, cb.MessageID)
	case cb.Data == ActionScan:
		c.transition(ctx, cb, (*session.UploadSession).EnterScan, func(s *session.UploadSession) (string, chat.Keyboard) {
			return scanText(len(s.ScanImages)), scanKeyboard()
		})
	case cb.Data == ActionScanCancel || cb.Data == ActionScanDone:
		c.transition(ctx, cb, (*session.UploadSession).ExitScan, func(s *session.UploadSession) (string, chat.Keyboard) {
			return uploadText(s.Discipline), uploadKeyboard()
		})
		if cb.Data == ActionScanDone {
			snap := c.deps.Sessions.Snapshot(cb.UserID, cb.ChatID)
			c.answer(ctx, cb.ID, fmt.Sprintf("Фото в скане: %d", len(snap.ScanImages)))
			return
		}
	case cb.Data == ActionReady:
		_, err := c.deps.Sessions.Update(cb.UserID, cb.ChatID, func(s *session.UploadSession) error { return s.Ready() })
		if errors.Is(err, session.ErrNoDiscipline) {
			c.answer(ctx, cb.ID, textNoDiscipline)
			return
		}
		if err == nil {
			c.edit(ctx, chat.Outgoing{ChatID: cb.ChatID, MessageID: cb.MessageID, Text: textLessonType, Keyboard: lessonKeyboard(), HTML: true})
		}
	default:
		if idx, ok := parseIndexed(cb.Data, pickPrefix); ok {
			c.pickDiscipline(ctx, cb, idx)
		} else if idx, ok := parseIndexed(cb.Data, lessonPrefix); ok {
			c.pickLessonType(ctx, cb, idx)
		}
	}
	c.answer(ctx, cb.ID, "")
}

func (c *Controller) startUpload(ctx context.Context, cb chat.Callback) {
	date := c.today()
	_, _ = c.deps.Sessions.Update(cb.UserID, cb.ChatID, func(s *session.UploadSession) error {
		s.Start(date)
		s.MenuMessageID = cb.MessageID
		return nil
	})
	c.edit(ctx, chat.Outgoing{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		Text:      textChooseDiscipline,
		Keyboard:  disciplinesKeyboard(c.deps.Library.Disciplines()),
		HTML:      true,
	})
}

func (c *Controller) pickDiscipline(ctx context.Context, cb chat.Callback, idx int) {
	disciplines := c.deps.Library.Disciplines()
	if idx >= len(disciplines) {
		return
	}
	name := disciplines[idx]
	c.transition(ctx, cb, func(s *session.UploadSession) error { return s.SelectDiscipline(name) },
		func(*session.UploadSession) (string, chat.Keyboard) { return uploadText(name), uploadKeyboard() })
}

func (c *Controller) pickLessonType(ctx context.Context, cb chat.Callback, idx int) {
	lt, ok := session.LessonTypeAt(idx)
	if !ok {
		return
	}
	c.transition(ctx, cb, func(s *session.UploadSession) error { return s.SelectLessonType(lt) },
		func(*session.UploadSession) (string, chat.Keyboard) { return textTopic, nil })
}

// transition applies step to the session and, when it is allowed, renders
// the resulting screen into the pressed message. Out-of-state presses are
// ignored.
func (c *Controller) transition(ctx context.Context, cb chat.Callback, step func(*session.UploadSession) error, view func(*session.UploadSession) (string, chat.Keyboard)) {
	sess, err := c.deps.Sessions.Update(cb.UserID, cb.ChatID, step)
	if err != nil {
		if !session.IsStateError(err) {
			c.logger.Warn("session transition failed", logging.Error(err))
		}
		return
	}
	text, kb := view(sess)
	c.edit(ctx, chat.Outgoing{ChatID: cb.ChatID, MessageID: cb.MessageID, Text: text, Keyboard: kb, HTML: true})
}
