package repository

import (
	"context"
	"time"

	"docstudio/internal/domain/model"
)

// CheckoutRepository stores pending checkout attempts keyed by the
// processor session id.
type CheckoutRepository interface {
	Save(ctx context.Context, tx Tx, c *model.PendingCheckout) error

	// FindUnconsumed returns the pending row for sessionID or
	// domain.ErrNotFound when no unconsumed row exists.
	FindUnconsumed(ctx context.Context, tx Tx, sessionID string) (*model.PendingCheckout, error)

	// MarkConsumed flips the consumed flag; consuming an already
	// consumed row returns domain.ErrNotFound.
	MarkConsumed(ctx context.Context, tx Tx, sessionID string) error

	// DeleteStale removes unconsumed rows created before cutoff and
	// returns how many were removed.
	DeleteStale(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
}
