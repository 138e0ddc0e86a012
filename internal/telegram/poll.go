package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecturebot/internal/chat"
	"lecturebot/internal/logging"
	"lecturebot/internal/services"
)

// Run long-polls for updates and feeds them to handler until ctx ends. It
// returns after in-flight handlers finish.
func (b *Bot) Run(ctx context.Context, handler chat.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	u.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.api.GetUpdatesChan(u)

	dispatcher := NewDispatcher(b.logger)
	defer dispatcher.Wait()

	b.logger.Info("telegram polling started",
		logging.String("username", b.username),
		logging.Int("poll_timeout_seconds", b.pollTimeout),
	)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.route(ctx, dispatcher, handler, update)
		}
	}
}

func (b *Bot) route(ctx context.Context, d *Dispatcher, handler chat.Handler, update tgbotapi.Update) {
	ctx = services.WithRequestID(ctx, "update-"+strconv.Itoa(update.UpdateID))
	if msg, ok := toMessage(update.Message); ok {
		d.Dispatch(ctx, laneKey(msg.ChatType, msg.UserID, msg.ChatID), func(ctx context.Context) {
			handler.HandleMessage(ctx, msg)
		})
		return
	}
	if cb, ok := toCallback(update.CallbackQuery); ok {
		d.Dispatch(ctx, laneKey(cb.ChatType, cb.UserID, cb.ChatID), func(ctx context.Context) {
			handler.HandleCallback(ctx, cb)
		})
	}
}

// laneKey serializes private updates per user and group updates per chat,
// so one group's library message is never reposted concurrently.
func laneKey(chatType chat.ChatType, userID, chatID int64) int64 {
	if chatType.IsGroup() || userID == 0 {
		return chatID
	}
	return userID
}
