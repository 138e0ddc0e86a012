package state

import (
	"context"
	"fmt"
	"time"
)

// ShareLink is a persisted public link for a discipline folder.
type ShareLink struct {
	Discipline string
	URL        string
	UpdatedAt  time.Time
}

// SaveShareLink inserts or replaces the link for discipline.
func (s *Store) SaveShareLink(ctx context.Context, discipline, url string) error {
	_, err := s.exec(ctx,
		`INSERT INTO share_links (discipline, url, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(discipline) DO UPDATE SET url = excluded.url, updated_at = excluded.updated_at`,
		discipline, url, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("save share link %q: %w", discipline, err)
	}
	return nil
}

// ShareLinks returns every persisted link keyed by discipline.
func (s *Store) ShareLinks(ctx context.Context) (map[string]ShareLink, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT discipline, url, updated_at FROM share_links")
	if err != nil {
		return nil, fmt.Errorf("query share links: %w", err)
	}
	defer rows.Close()

	links := make(map[string]ShareLink)
	for rows.Next() {
		var (
			link    ShareLink
			updated string
		)
		if err := rows.Scan(&link.Discipline, &link.URL, &updated); err != nil {
			return nil, fmt.Errorf("scan share link: %w", err)
		}
		link.UpdatedAt = parseTimestamp(updated)
		links[link.Discipline] = link
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share links: %w", err)
	}
	return links, nil
}

// DeleteShareLink forgets the link for discipline.
func (s *Store) DeleteShareLink(ctx context.Context, discipline string) error {
	if _, err := s.exec(ctx, "DELETE FROM share_links WHERE discipline = ?", discipline); err != nil {
		return fmt.Errorf("delete share link %q: %w", discipline, err)
	}
	return nil
}
