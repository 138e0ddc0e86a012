package library

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lecturebot/internal/chat"
	"lecturebot/internal/logging"
)

// Callback data of library buttons.
const (
	ActionRefresh = "refresh"
	ActionAdd     = "add"
)

const timestampLayout = "02.01.2006 15:04"

// MessageStore remembers the library message id per chat.
type MessageStore interface {
	LibraryMessage(ctx context.Context, chatID int64) (int, bool, error)
	SaveLibraryMessage(ctx context.Context, chatID int64, messageID int) error
}

// Options configures a Library.
type Options struct {
	Title       string
	Disciplines []string
	Location    *time.Location
	// TargetChatID restricts group reposting to one chat when non-zero.
	TargetChatID int64
}

// Library renders and posts the library message.
type Library struct {
	opts      Options
	cache     *ShareLinkCache
	messenger chat.Messenger
	messages  MessageStore
	now       func() time.Time
	logger    *slog.Logger

	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

// New constructs a Library.
func New(opts Options, cache *ShareLinkCache, messenger chat.Messenger, messages MessageStore, logger *slog.Logger) *Library {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Library{
		opts:      opts,
		cache:     cache,
		messenger: messenger,
		messages:  messages,
		now:       time.Now,
		logger:    logging.NewComponentLogger(logger, "library"),
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

// Disciplines returns the configured discipline list.
func (l *Library) Disciplines() []string {
	return l.opts.Disciplines
}

// Cache returns the share link cache.
func (l *Library) Cache() *ShareLinkCache {
	return l.cache
}

// Text renders the library message body as HTML.
func (l *Library) Text(ctx context.Context) string {
	links := l.cache.Resolve(ctx, l.opts.Disciplines)
	var b strings.Builder
	fmt.Fprintf(&b, "📚 <b>%s</b>\n\n", html.EscapeString(l.opts.Title))
	for _, name := range l.opts.Disciplines {
		url, ok := links[name]
		if !ok || url == "" {
			url = "#"
		}
		fmt.Fprintf(&b, "🔗 <a href=\"%s\">%s</a>\n", html.EscapeString(url), html.EscapeString(name))
	}
	fmt.Fprintf(&b, "\n📅 Последнее обновление: <code>%s</code>", l.now().In(l.opts.Location).Format(timestampLayout))
	return b.String()
}

// MenuKeyboard is the private-chat library keyboard.
func MenuKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(
		chat.DataButton("🔄 Обновить", ActionRefresh),
		chat.DataButton("➕ Добавить файл", ActionAdd),
	)}
}

// GroupKeyboard is the group library keyboard.
func GroupKeyboard() chat.Keyboard {
	return chat.Keyboard{chat.Row(chat.DataButton("🔄 Обновить", ActionRefresh))}
}

// Serves reports whether the group chat gets a library message.
func (l *Library) Serves(chatID int64) bool {
	return l.opts.TargetChatID == 0 || l.opts.TargetChatID == chatID
}

// TargetChatID returns the configured group, or zero.
func (l *Library) TargetChatID() int64 {
	return l.opts.TargetChatID
}

// Repost deletes the previous library message in chatID, posts a fresh
// one and remembers its id. Deleting and persisting are best effort.
// Reposts to the same chat run one at a time.
func (l *Library) Repost(ctx context.Context, chatID int64) (int, error) {
	lock := l.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	logger := logging.WithContext(ctx, l.logger)
	if old, ok, err := l.messages.LibraryMessage(ctx, chatID); err != nil {
		logger.Warn("read library message id failed", logging.Error(err), logging.Int64(logging.FieldChatID, chatID))
	} else if ok {
		if err := l.messenger.Delete(ctx, chatID, old); err != nil {
			logger.Debug("delete old library message failed", logging.Int("message_id", old), logging.Error(err))
		}
	}

	id, err := l.messenger.Send(ctx, chat.Outgoing{
		ChatID:    chatID,
		Text:      l.Text(ctx),
		Keyboard:  GroupKeyboard(),
		HTML:      true,
		NoPreview: true,
	})
	if err != nil {
		logging.WarnWithContext(logger, "post library message failed", "library_post_failed",
			logging.Int64(logging.FieldChatID, chatID),
			logging.String(logging.FieldImpact, "group has no current library message"),
			logging.Error(err),
		)
		return 0, err
	}
	if err := l.messages.SaveLibraryMessage(ctx, chatID, id); err != nil {
		logger.Warn("save library message id failed", logging.Error(err), logging.Int64(logging.FieldChatID, chatID))
	}
	return id, nil
}

func (l *Library) chatLock(chatID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		l.chatLocks[chatID] = lock
	}
	return lock
}
