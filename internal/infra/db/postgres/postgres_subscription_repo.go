package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if s.Status == model.SubscriptionStatusActive {
		// One active row per user: demote the previous one first so the
		// invariant holds inside the same transaction.
		const supersede = `
UPDATE subscriptions
   SET status='superseded', updated_at=NOW()
 WHERE user_id=$1 AND status='active' AND id<>$2;`
		if _, err := execSQL(ctx, r.pool, tx, supersede, s.UserID, s.ID); err != nil {
			return mapExecError(err)
		}
	}

	const q = `
INSERT INTO subscriptions (
  id, user_id, plan_id, status, external_session_id, external_subscription_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  plan_id=$3, status=$4, external_session_id=$5, external_subscription_id=$6, updated_at=$8;`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PlanID, string(s.Status), s.ExternalSessionID, s.ExternalSubscriptionID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return mapExecError(err)
	}
	return nil
}

func (r *subscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	const q = `
SELECT id, user_id, plan_id, status, external_session_id, external_subscription_id, created_at, updated_at
  FROM subscriptions
 WHERE user_id=$1 AND status='active'
 ORDER BY created_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, userID)
}

func (r *subscriptionRepo) FindByExternalSubscriptionID(ctx context.Context, tx repository.Tx, externalID string) (*model.Subscription, error) {
	const q = `
SELECT id, user_id, plan_id, status, external_session_id, external_subscription_id, created_at, updated_at
  FROM subscriptions
 WHERE external_subscription_id=$1
 ORDER BY created_at DESC
 LIMIT 1;`
	return r.queryOne(ctx, tx, q, externalID)
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, userID, id string, status model.SubscriptionStatus) error {
	const q = `UPDATE subscriptions SET status=$3, updated_at=NOW() WHERE id=$1 AND user_id=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, userID, string(status))
	if err != nil {
		return mapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) SetExternalSubscriptionID(ctx context.Context, tx repository.Tx, userID, id, externalID string) error {
	const q = `UPDATE subscriptions SET external_subscription_id=$3, updated_at=NOW() WHERE id=$1 AND user_id=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, userID, externalID)
	if err != nil {
		return mapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}

	s := &model.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.UserID, &s.PlanID, &status, &s.ExternalSessionID, &s.ExternalSubscriptionID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}

// mapExecError converts driver errors into domain errors, keeping the
// executor-selection sentinels intact.
func mapExecError(err error) error {
	switch err {
	case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return domain.ErrOperationFailed
}
