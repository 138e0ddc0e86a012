package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LibraryMessage returns the library message id last posted in chatID.
// ok is false when none is recorded.
func (s *Store) LibraryMessage(ctx context.Context, chatID int64) (messageID int, ok bool, err error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT message_id FROM library_messages WHERE chat_id = ?", chatID)
	if err := row.Scan(&messageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read library message for chat %d: %w", chatID, err)
	}
	return messageID, true, nil
}

// SaveLibraryMessage records the current library message id for chatID.
func (s *Store) SaveLibraryMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.exec(ctx,
		`INSERT INTO library_messages (chat_id, message_id, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(chat_id) DO UPDATE SET message_id = excluded.message_id, updated_at = excluded.updated_at`,
		chatID, messageID, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("save library message for chat %d: %w", chatID, err)
	}
	return nil
}
