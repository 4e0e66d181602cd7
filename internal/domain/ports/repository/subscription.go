package repository

import (
	"context"

	"docstudio/internal/domain/model"
)

// SubscriptionRepository is the entitlement store's subscription port.
type SubscriptionRepository interface {
	// Upsert writes sub and, when sub is active, flips any other active
	// row for the same user to superseded in the same statement batch.
	// At most one active subscription per user holds after every call.
	Upsert(ctx context.Context, tx Tx, sub *model.Subscription) error

	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	FindByExternalSubscriptionID(ctx context.Context, tx Tx, externalID string) (*model.Subscription, error)

	// UpdateStatus carries the owning user so caching layers can drop
	// that user's entitlement entry on lifecycle transitions.
	UpdateStatus(ctx context.Context, tx Tx, userID, id string, status model.SubscriptionStatus) error

	// SetExternalSubscriptionID records the processor's recurring
	// subscription id once it is known.
	SetExternalSubscriptionID(ctx context.Context, tx Tx, userID, id, externalID string) error
}
