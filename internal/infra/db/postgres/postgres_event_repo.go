package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"docstudio/internal/domain"
	"docstudio/internal/domain/ports/repository"
)

// Ensure processedEventRepo implements repository.ProcessedEventRepository
var _ repository.ProcessedEventRepository = (*processedEventRepo)(nil)

type processedEventRepo struct {
	pool *pgxpool.Pool
}

func NewProcessedEventRepo(pool *pgxpool.Pool) *processedEventRepo {
	return &processedEventRepo{pool: pool}
}

func (r *processedEventRepo) MarkProcessed(ctx context.Context, tx repository.Tx, eventID string) (bool, error) {
	// ON CONFLICT DO NOTHING: zero affected rows means a duplicate.
	const q = `
INSERT INTO processed_events (event_id, processed_at)
VALUES ($1, NOW())
ON CONFLICT (event_id) DO NOTHING;`
	tag, err := execSQL(ctx, r.pool, tx, q, eventID)
	if err != nil {
		return false, mapExecError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *processedEventRepo) IsProcessed(ctx context.Context, tx repository.Tx, eventID string) (bool, error) {
	const q = `SELECT 1 FROM processed_events WHERE event_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, eventID)
	if err != nil {
		return false, err
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, domain.ErrReadDatabaseRow
	}
	return true, nil
}
