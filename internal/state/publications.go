package state

import (
	"context"
	"fmt"
	"time"
)

// Publication is one completed upload session.
type Publication struct {
	ID          int64
	UserID      int64
	Discipline  string
	SessionDate string
	LessonType  string
	Topic       string
	Uploaded    int
	Total       int
	FolderURL   string
	CreatedAt   time.Time
}

// RecordPublication appends pub to the publication log and returns its id.
func (s *Store) RecordPublication(ctx context.Context, pub Publication) (int64, error) {
	res, err := s.exec(ctx,
		`INSERT INTO publications (
            user_id, discipline, session_date, lesson_type, topic,
            uploaded, total, folder_url, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pub.UserID, pub.Discipline, pub.SessionDate, pub.LessonType, pub.Topic,
		pub.Uploaded, pub.Total, pub.FolderURL, s.timestamp(),
	)
	if err != nil {
		return 0, fmt.Errorf("record publication: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("publication id: %w", err)
	}
	return id, nil
}

// RecentPublications returns up to limit publications, newest first. An
// empty discipline matches all.
func (s *Store) RecentPublications(ctx context.Context, discipline string, limit int) ([]Publication, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, user_id, discipline, session_date, lesson_type, topic,
                     uploaded, total, folder_url, created_at
              FROM publications`
	args := []any{}
	if discipline != "" {
		query += " WHERE discipline = ?"
		args = append(args, discipline)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		var (
			pub     Publication
			created string
		)
		if err := rows.Scan(&pub.ID, &pub.UserID, &pub.Discipline, &pub.SessionDate, &pub.LessonType,
			&pub.Topic, &pub.Uploaded, &pub.Total, &pub.FolderURL, &created); err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pub.CreatedAt = parseTimestamp(created)
		pubs = append(pubs, pub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return pubs, nil
}
