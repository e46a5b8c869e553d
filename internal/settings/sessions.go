package settings

import (
	"context"
	"fmt"
	"time"
)

// SessionRecord is one row of the check-session log.
type SessionRecord struct {
	Token     string
	Filename  string
	Mode      string
	Status    string
	Message   string
	CreatedAt time.Time
}

// RecordSession appends a session outcome to the log.
// Writing the same token twice is idempotent.
func (s *Store) RecordSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, filename, mode, status, message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, rec.Token, rec.Filename, rec.Mode, rec.Status, rec.Message)
	if err != nil {
		return fmt.Errorf("record session %s: %w", rec.Token, err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, filename, mode, status, message, created_at
		FROM sessions
		ORDER BY created_at DESC, token DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var createdAt string
		if err := rows.Scan(&rec.Token, &rec.Filename, &rec.Mode, &rec.Status, &rec.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.CreatedAt, err = time.Parse("2006-01-02T15:04:05.999Z", createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse session timestamp %q: %w", createdAt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}
