package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"lecturebot/internal/logging"
)

// DefaultIdleTimeout is used when the store is built with a zero timeout.
const DefaultIdleTimeout = 3 * time.Hour

// Store keeps one UploadSession per user. Sessions untouched for the idle
// timeout are evicted and their temp directories removed.
type Store struct {
	mu      sync.Mutex
	cache   *cache.Cache
	tempDir string
	logger  *slog.Logger
}

// NewStore builds a store whose per-user temp directories live under tempDir.
func NewStore(idle time.Duration, tempDir string, logger *slog.Logger) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	cleanup := idle / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	s := &Store{
		cache:   cache.New(idle, cleanup),
		tempDir: tempDir,
		logger:  logging.NewComponentLogger(logger, "session"),
	}
	s.cache.OnEvicted(s.onEvicted)
	return s
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Snapshot returns a copy of the user's session, creating an Idle one when
// none exists.
func (s *Store) Snapshot(userID, chatID int64) *UploadSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID, chatID).Clone()
}

// Update runs fn against the user's live session under the store lock and
// refreshes its expiry. fn must not block on I/O.
func (s *Store) Update(userID, chatID int64, fn func(*UploadSession) error) (*UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.load(userID, chatID)
	previous := sess.ID
	err := fn(sess)
	if sess.ID != previous {
		s.rotateTempDir(sess, previous)
	}
	s.cache.SetDefault(key(userID), sess)
	return sess.Clone(), err
}

// Delete drops the user's session and its temp directory.
func (s *Store) Delete(userID int64) {
	s.cache.Delete(key(userID))
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// load must be called with mu held.
func (s *Store) load(userID, chatID int64) *UploadSession {
	if v, ok := s.cache.Get(key(userID)); ok {
		sess := v.(*UploadSession)
		if chatID != 0 {
			sess.ChatID = chatID
		}
		return sess
	}
	// An expired entry stays in the cache until the janitor runs, and Set
	// does not report it as evicted; purge now so its temp dir goes too.
	s.cache.DeleteExpired()
	sess := New(userID, chatID)
	sess.TempDir = s.sessionDir(sess)
	s.cache.SetDefault(key(userID), sess)
	return sess
}

// rotateTempDir removes the directory of a session that was restarted or
// cancelled and assigns the directory for its new ID.
func (s *Store) rotateTempDir(sess *UploadSession, previousID string) {
	if old := sess.TempDir; old != "" {
		s.removeDir(old)
	}
	sess.TempDir = s.sessionDir(sess)
	s.logger.Debug("session rotated",
		logging.Int64(logging.FieldUserID, sess.UserID),
		logging.String("previous_session_id", previousID),
		logging.String(logging.FieldSessionID, sess.ID),
	)
}

func (s *Store) sessionDir(sess *UploadSession) string {
	if s.tempDir == "" {
		return ""
	}
	return filepath.Join(s.tempDir, key(sess.UserID), sess.ID)
}

func (s *Store) onEvicted(_ string, value any) {
	sess, ok := value.(*UploadSession)
	if !ok {
		return
	}
	s.removeDir(sess.TempDir)
	s.logger.Debug("session evicted",
		logging.Int64(logging.FieldUserID, sess.UserID),
		logging.String(logging.FieldSessionID, sess.ID),
	)
}

func (s *Store) removeDir(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("remove session temp dir failed",
			logging.String("dir", dir),
			logging.Error(err),
			logging.String(logging.FieldEventType, "session_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "check permissions on intake.temp_dir"),
		)
	}
}
