package model

import (
	"time"

	"docstudio/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending    SubscriptionStatus = "pending"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusSuperseded SubscriptionStatus = "superseded"
)

// Subscription ties a user to a plan. Rows are never deleted: activating a
// new plan supersedes the previous active row so the trail stays auditable.
type Subscription struct {
	ID     string // UUID
	UserID string // UUID
	PlanID string
	Status SubscriptionStatus

	// ExternalSessionID correlates a pending checkout with the event the
	// processor eventually delivers; nil for free-tier activations.
	ExternalSessionID *string
	// ExternalSubscriptionID is set once the processor has created a
	// recurring subscription; lifecycle events are matched on it.
	ExternalSubscriptionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPendingSubscription records intent to buy planID through checkout
// session sessionID. It activates only when the confirmation event arrives.
func NewPendingSubscription(id, userID, planID, sessionID string) (*Subscription, error) {
	if id == "" || userID == "" || !KnownPlan(planID) || sessionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:                id,
		UserID:            userID,
		PlanID:            planID,
		Status:            SubscriptionStatusPending,
		ExternalSessionID: &sessionID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// NewActiveSubscription constructs an immediately-active subscription.
// Free-tier activation uses this path; no external confirmation involved.
func NewActiveSubscription(id, userID, planID string) (*Subscription, error) {
	if id == "" || userID == "" || !KnownPlan(planID) {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:        id,
		UserID:    userID,
		PlanID:    planID,
		Status:    SubscriptionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Subscription) Plan() Plan {
	if s == nil || s.Status != SubscriptionStatusActive {
		return ResolvePlan(PlanNone)
	}
	return ResolvePlan(s.PlanID)
}
