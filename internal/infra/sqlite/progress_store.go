package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createProgressTable = `
CREATE TABLE IF NOT EXISTS progress (
	exercise_id TEXT PRIMARY KEY,
	data        TEXT NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// ProgressBackend stores progress records in a local SQLite file, one row
// per exercise.
type ProgressBackend struct {
	db *sql.DB
}

// Open creates the database file if needed and ensures the progress table exists.
func Open(path string) (*ProgressBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(time.Minute)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}
	if _, err := db.Exec(createProgressTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create progress table: %w", err)
	}
	return &ProgressBackend{db: db}, nil
}

func (b *ProgressBackend) Close() error {
	return b.db.Close()
}

func (b *ProgressBackend) Put(ctx context.Context, exerciseID string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO progress (exercise_id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(exercise_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		exerciseID, string(data))
	if err != nil {
		return fmt.Errorf("sqlite save progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Get(ctx context.Context, exerciseID string) ([]byte, bool, error) {
	var data string
	err := b.db.QueryRowContext(ctx, `SELECT data FROM progress WHERE exercise_id = ?`, exerciseID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite load progress: %w", err)
	}
	return []byte(data), true, nil
}

func (b *ProgressBackend) Delete(ctx context.Context, exerciseID string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM progress WHERE exercise_id = ?`, exerciseID); err != nil {
		return fmt.Errorf("sqlite clear progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT exercise_id FROM progress ORDER BY exercise_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite list progress: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite scan progress: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
