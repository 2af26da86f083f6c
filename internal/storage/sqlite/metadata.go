package sqlite

import (
	"context"
	"fmt"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

const (
	keyTimePosted    = "time_posted"
	keyNextScheduled = "next_scheduled_post_time"
)

// SaveSnapshot upserts the freshness metadata written after every
// successful refresh.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	for key, value := range map[string]int64{
		keyTimePosted:    snap.TimePosted,
		keyNextScheduled: snap.NextScheduled,
	} {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO metadata (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("save metadata %s: %w", key, err)
		}
	}
	return nil
}

// Snapshot reads the stored freshness metadata. Missing keys read as
// zero, which callers treat as "never refreshed".
func (s *Store) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap domain.Snapshot
	for rows.Next() {
		var (
			key   string
			value int64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan metadata: %w", err)
		}
		switch key {
		case keyTimePosted:
			snap.TimePosted = value
		case keyNextScheduled:
			snap.NextScheduled = value
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("iterate metadata: %w", err)
	}

	return snap, nil
}
