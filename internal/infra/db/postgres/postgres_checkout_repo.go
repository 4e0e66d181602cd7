package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
)

// Ensure checkoutRepo implements repository.CheckoutRepository
var _ repository.CheckoutRepository = (*checkoutRepo)(nil)

type checkoutRepo struct {
	pool *pgxpool.Pool
}

func NewCheckoutRepo(pool *pgxpool.Pool) *checkoutRepo {
	return &checkoutRepo{pool: pool}
}

func (r *checkoutRepo) Save(ctx context.Context, tx repository.Tx, c *model.PendingCheckout) error {
	const q = `
INSERT INTO pending_checkouts (session_id, user_id, target_plan_id, consumed, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (session_id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, c.SessionID, c.UserID, c.TargetPlanID, c.Consumed, c.CreatedAt)
	if err != nil {
		return mapExecError(err)
	}
	return nil
}

func (r *checkoutRepo) FindUnconsumed(ctx context.Context, tx repository.Tx, sessionID string) (*model.PendingCheckout, error) {
	const q = `
SELECT session_id, user_id, target_plan_id, consumed, created_at
  FROM pending_checkouts
 WHERE session_id=$1 AND consumed=FALSE;`
	row, err := pickRow(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, err
	}
	c := &model.PendingCheckout{}
	if err := row.Scan(&c.SessionID, &c.UserID, &c.TargetPlanID, &c.Consumed, &c.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *checkoutRepo) MarkConsumed(ctx context.Context, tx repository.Tx, sessionID string) error {
	// The consumed=FALSE guard makes double-consumption visible as
	// zero affected rows.
	const q = `UPDATE pending_checkouts SET consumed=TRUE WHERE session_id=$1 AND consumed=FALSE;`
	tag, err := execSQL(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return mapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *checkoutRepo) DeleteStale(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `DELETE FROM pending_checkouts WHERE consumed=FALSE AND created_at < $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, mapExecError(err)
	}
	return int(tag.RowsAffected()), nil
}
