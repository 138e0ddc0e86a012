package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lecturebot/internal/chat"
	"lecturebot/internal/config"
	"lecturebot/internal/logging"
	"lecturebot/internal/services"
)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

const maxRetryAfter = 30 * time.Second

// Bot is the Telegram transport.
type Bot struct {
	api         botAPI
	client      *http.Client
	username    string
	pollTimeout int
	sleep       func(context.Context, time.Duration) error
	logger      *slog.Logger
}

var (
	_ chat.Messenger  = (*Bot)(nil)
	_ chat.Downloader = (*Bot)(nil)
)

// New authenticates with the Bot API using cfg.Token.
func New(cfg config.Telegram, logger *slog.Logger) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "telegram", "init", "bot token is empty", nil)
	}
	client := &http.Client{Timeout: time.Duration(cfg.PollTimeoutSeconds+30) * time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "telegram", "init", "authenticate bot", err)
	}
	api.Debug = cfg.Debug
	bot := newBot(api, client, cfg.PollTimeoutSeconds, logger)
	bot.username = api.Self.UserName
	return bot, nil
}

func newBot(api botAPI, client *http.Client, pollTimeout int, logger *slog.Logger) *Bot {
	if client == nil {
		client = http.DefaultClient
	}
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Bot{
		api:         api,
		client:      client,
		pollTimeout: pollTimeout,
		sleep:       sleepContext,
		logger:      logging.NewComponentLogger(logger, "telegram"),
	}
}

// Username returns the bot's @username without the at sign.
func (b *Bot) Username() string {
	return b.username
}

// Send posts a new message and returns its id.
func (b *Bot) Send(ctx context.Context, msg chat.Outgoing) (int, error) {
	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if msg.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	cfg.DisableWebPagePreview = msg.NoPreview
	if markup, ok := inlineMarkup(msg.Keyboard); ok {
		cfg.ReplyMarkup = markup
	}
	var sent tgbotapi.Message
	err := b.withRetry(ctx, "send", func() error {
		var err error
		sent, err = b.api.Send(cfg)
		return err
	})
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// Edit replaces the text and keyboard of an existing message. An edit that
// changes nothing counts as success.
func (b *Bot) Edit(ctx context.Context, msg chat.Outgoing) error {
	cfg := tgbotapi.NewEditMessageText(msg.ChatID, msg.MessageID, msg.Text)
	if msg.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	cfg.DisableWebPagePreview = msg.NoPreview
	if markup, ok := inlineMarkup(msg.Keyboard); ok {
		cfg.ReplyMarkup = &markup
	}
	err := b.request(ctx, "edit", cfg)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

// Delete removes a message.
func (b *Bot) Delete(ctx context.Context, chatID int64, messageID int) error {
	return b.request(ctx, "delete", tgbotapi.NewDeleteMessage(chatID, messageID))
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return b.request(ctx, "answer_callback", tgbotapi.NewCallback(callbackID, text))
}

// Open streams the contents of a file held by Telegram.
func (b *Bot) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram get file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram download: build request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("telegram download: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (b *Bot) request(ctx context.Context, op string, c tgbotapi.Chattable) error {
	return b.withRetry(ctx, op, func() error {
		_, err := b.api.Request(c)
		return err
	})
}

// withRetry runs fn once more after a flood-control error, waiting the
// interval Telegram asks for.
func (b *Bot) withRetry(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := fn()
	wait, ok := retryAfter(err)
	if !ok {
		return err
	}
	b.logger.Info("telegram flood control; retrying",
		logging.String("op", op),
		logging.Duration("retry_after", wait),
	)
	if err := b.sleep(ctx, wait); err != nil {
		return err
	}
	return fn()
}

func retryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 {
		return 0, false
	}
	wait := time.Duration(apiErr.RetryAfter) * time.Second
	if wait > maxRetryAfter {
		return 0, false
	}
	return wait, true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func inlineMarkup(kb chat.Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(kb) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
