package workflow

import (
	"context"
	"log/slog"
	"time"

	"lecturebot/internal/chat"
	"lecturebot/internal/config"
	"lecturebot/internal/intake"
	"lecturebot/internal/library"
	"lecturebot/internal/logging"
	"lecturebot/internal/notes"
	"lecturebot/internal/notifications"
	"lecturebot/internal/publish"
	"lecturebot/internal/services"
	"lecturebot/internal/session"
	"lecturebot/internal/state"
)

// Intake records attachments and notes on sessions.
type Intake interface {
	AddAttachment(ctx context.Context, userID, chatID int64, att chat.Attachment) (intake.Outcome, error)
	AddNote(ctx context.Context, userID, chatID int64, text string) (intake.Outcome, error)
}

// NotesBuilder generates session artifacts.
type NotesBuilder interface {
	Build(ctx context.Context, sess *session.UploadSession, topic, outDir string) notes.Result
}

// Publisher uploads a finished session.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) publish.Report
}

// PublicationLog records completed publications.
type PublicationLog interface {
	RecordPublication(ctx context.Context, pub state.Publication) (int64, error)
}

// Dependencies are the collaborators of a Controller.
type Dependencies struct {
	Sessions  *session.Store
	Intake    Intake
	Notes     NotesBuilder
	Publisher Publisher
	Library   *library.Library
	Messenger chat.Messenger
	Notifier  notifications.Service
	History   PublicationLog
}

// Controller implements chat.Handler.
type Controller struct {
	cfg  *config.Config
	deps Dependencies
	now  func() time.Time

	logger *slog.Logger
}

var _ chat.Handler = (*Controller)(nil)

// NewController constructs a Controller.
func NewController(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(nil)
	}
	return &Controller{
		cfg:    cfg,
		deps:   deps,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}
}

// HandleMessage dispatches an inbound message.
func (c *Controller) HandleMessage(ctx context.Context, msg chat.Message) {
	ctx = services.WithChatID(services.WithUserID(ctx, msg.UserID), msg.ChatID)
	if msg.ChatType.IsGroup() {
		c.handleGroupMessage(ctx, msg)
		return
	}
	if msg.ChatType != chat.Private {
		return
	}
	c.handlePrivateMessage(ctx, msg)
}

// HandleCallback dispatches an inline button press.
func (c *Controller) HandleCallback(ctx context.Context, cb chat.Callback) {
	ctx = services.WithChatID(services.WithUserID(ctx, cb.UserID), cb.ChatID)
	if cb.ChatType.IsGroup() {
		c.handleGroupCallback(ctx, cb)
		return
	}
	c.handlePrivateCallback(ctx, cb)
}

func (c *Controller) today() string {
	return c.now().In(c.cfg.Location()).Format(session.DateLayout)
}

func (c *Controller) send(ctx context.Context, out chat.Outgoing) int {
	id, err := c.deps.Messenger.Send(ctx, out)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "send message failed", "chat_send_failed",
			logging.String(logging.FieldImpact, "user did not receive a reply"),
			logging.Error(err),
		)
	}
	return id
}

func (c *Controller) reply(ctx context.Context, chatID int64, text string) {
	c.send(ctx, chat.Outgoing{ChatID: chatID, Text: text, HTML: true})
}

// edit replaces the text of messageID, posting a new message when the
// edit is refused (message too old or deleted). It returns the id of the
// message that now shows the text.
func (c *Controller) edit(ctx context.Context, out chat.Outgoing) int {
	if out.MessageID != 0 {
		err := c.deps.Messenger.Edit(ctx, out)
		if err == nil {
			return out.MessageID
		}
		c.logger.Debug("edit failed; sending new message", logging.Error(err))
	}
	out.MessageID = 0
	return c.send(ctx, out)
}

func (c *Controller) answer(ctx context.Context, callbackID, text string) {
	if err := c.deps.Messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		c.logger.Debug("answer callback failed", logging.Error(err))
	}
}

// showMenu renders the private library menu into messageID (or a new
// message) and remembers it as the session menu.
func (c *Controller) showMenu(ctx context.Context, userID, chatID int64, messageID int) {
	id := c.edit(ctx, chat.Outgoing{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      c.deps.Library.Text(ctx),
		Keyboard:  library.MenuKeyboard(),
		HTML:      true,
		NoPreview: true,
	})
	c.rememberMenu(userID, chatID, id)
}

func (c *Controller) rememberMenu(userID, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	_, _ = c.deps.Sessions.Update(userID, chatID, func(s *session.UploadSession) error {
		s.MenuMessageID = messageID
		return nil
	})
}

// discard resets the user's session, dropping anything collected so far.
func (c *Controller) discard(ctx context.Context, userID, chatID int64) {
	var dropped session.UploadSession
	_, _ = c.deps.Sessions.Update(userID, chatID, func(s *session.UploadSession) error {
		dropped = *s
		s.Cancel()
		return nil
	})
	if dropped.Empty() {
		return
	}
	logging.WithContext(ctx, c.logger).Info("upload discarded",
		logging.String(logging.FieldEventType, "upload_discarded"),
		logging.String("discipline", dropped.Discipline),
		logging.Int("files", len(dropped.CollectedFiles)),
		logging.Int("notes", len(dropped.TextNotes)),
		logging.Int("scan_images", len(dropped.ScanImages)),
	)
}
