package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProgressBackend keeps progress records in the progress table as JSONB.
type ProgressBackend struct {
	pool *pgxpool.Pool
}

func NewProgressBackend(pool *pgxpool.Pool) *ProgressBackend {
	return &ProgressBackend{pool: pool}
}

func (b *ProgressBackend) Put(ctx context.Context, exerciseID string, data []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO progress (exercise_id, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (exercise_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		exerciseID, string(data))
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Get(ctx context.Context, exerciseID string) ([]byte, bool, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT data FROM progress WHERE exercise_id=$1`, exerciseID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load progress: %w", err)
	}
	return raw, true, nil
}

func (b *ProgressBackend) Delete(ctx context.Context, exerciseID string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM progress WHERE exercise_id=$1`, exerciseID); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

func (b *ProgressBackend) Keys(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT exercise_id FROM progress ORDER BY exercise_id`)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
