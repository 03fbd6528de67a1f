package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dictation-trainer/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ContentLoader loads the exercise catalog and segment JSONB from Postgres.
type ContentLoader struct {
	pool *pgxpool.Pool
}

func NewContentLoader(pool *pgxpool.Pool) *ContentLoader {
	return &ContentLoader{pool: pool}
}

func (l *ContentLoader) LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, name FROM exercises ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog: %v", domain.ErrContentLoad, err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var entry domain.CatalogEntry
		if err := rows.Scan(&entry.ID, &entry.Name); err != nil {
			return nil, fmt.Errorf("%w: scan catalog: %v", domain.ErrContentLoad, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load catalog: %v", domain.ErrContentLoad, err)
	}
	return entries, nil
}

func (l *ContentLoader) LoadSegments(ctx context.Context, exerciseID string) ([]domain.Segment, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT segments FROM exercises WHERE id=$1`, exerciseID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load exercise %s: %v", domain.ErrContentLoad, exerciseID, err)
	}
	var segments []domain.Segment
	if err := json.Unmarshal(raw, &segments); err != nil {
		return nil, fmt.Errorf("%w: unmarshal exercise %s: %v", domain.ErrContentLoad, exerciseID, err)
	}
	return segments, nil
}
