// Package sqlite persists leaderboard rows and freshness metadata in
// a single SQLite file under the data directory.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

const busyTimeout = 5 * time.Second

// Store provides SQLite persistence for leaderboard data.
type Store struct {
	db *sql.DB
}

// NewStore opens the database, applies the connection pragmas and
// runs migrations. WAL keeps page reads from blocking behind the
// refresher's bulk writes; busy_timeout avoids "database locked"
// errors when they do collide.
func NewStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		dbPath, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region TEXT NOT NULL,
		rank INTEGER NOT NULL,
		name TEXT NOT NULL,
		team_id INTEGER,
		team_tag TEXT,
		sponsor TEXT,
		country TEXT,
		UNIQUE(region, rank)
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_region ON players(region);
	CREATE INDEX IF NOT EXISTS idx_country ON players(country);
	`

	_, err := s.db.Exec(schema)
	return err
}
