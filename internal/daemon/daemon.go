package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"lecturebot/internal/chat"
	"lecturebot/internal/config"
	"lecturebot/internal/library"
	"lecturebot/internal/logging"
	"lecturebot/internal/notifications"
	"lecturebot/internal/state"
)

// Transport delivers chat events to a handler until ctx ends.
type Transport interface {
	Run(ctx context.Context, handler chat.Handler) error
}

// Daemon runs the bot and enforces single-instance execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *state.Store
	library   *library.Library
	transport Transport
	handler   chat.Handler
	notifier  notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	StatePath    string
	LockFilePath string
	Disciplines  int
	Linked       int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *state.Store, lib *library.Library, transport Transport, handler chat.Handler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || lib == nil || transport == nil || handler == nil {
		return nil, errors.New("daemon requires config, store, library, transport, and handler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		library:   lib,
		transport: transport,
		handler:   handler,
		notifier:  notifications.NewService(cfg),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Run acquires the daemon lock, prepares the library and serves chat
// events until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lecturebot instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	d.logger.Info("lecturebot daemon started", logging.String("lock", d.lockPath))
	d.prepareLibrary(ctx)

	err = d.transport.Run(ctx, d.handler)
	d.logger.Info("lecturebot daemon stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("transport: %w", err)
	}
	return nil
}

// prepareLibrary loads persisted share links, refreshes them against the
// remote store and reposts the group library message. Every step is best
// effort: the bot still serves uploads when the store is unreachable.
func (d *Daemon) prepareLibrary(ctx context.Context) {
	cache := d.library.Cache()
	if err := cache.Load(ctx); err != nil {
		d.logger.Warn("load share links failed", logging.Error(err))
	}
	if _, err := cache.Sync(ctx, d.library.Disciplines()); err != nil {
		logging.WarnWithContext(d.logger, "startup library sync failed", "library_sync_failed",
			logging.String(logging.FieldErrorHint, "check nextcloud.url and credentials"),
			logging.String(logging.FieldImpact, "library links may be stale until /sync"),
			logging.Error(err),
		)
	}
	if target := d.library.TargetChatID(); target != 0 {
		if _, err := d.library.Repost(ctx, target); err != nil {
			d.logger.Warn("startup library repost failed", logging.Error(err))
		}
	}
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		StatePath:    d.store.Path(),
		LockFilePath: d.lockPath,
		Disciplines:  len(d.library.Disciplines()),
		Linked:       len(d.library.Cache().Snapshot()),
	}
}
