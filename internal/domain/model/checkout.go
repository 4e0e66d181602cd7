package model

import (
	"time"

	"docstudio/internal/domain"
)

// PendingCheckout is the local record of a checkout attempt, keyed by the
// processor-assigned session id. The reconciler uses it to recover the
// plan the user intended to buy, because the confirmation event may not
// carry that context. Stale rows are harmless; they simply never get
// consumed.
type PendingCheckout struct {
	SessionID    string // assigned by the processor
	UserID       string // UUID
	TargetPlanID string
	Consumed     bool
	CreatedAt    time.Time
}

func NewPendingCheckout(sessionID, userID, planID string) (*PendingCheckout, error) {
	if sessionID == "" || userID == "" || !KnownPlan(planID) {
		return nil, domain.ErrInvalidArgument
	}
	return &PendingCheckout{
		SessionID:    sessionID,
		UserID:       userID,
		TargetPlanID: planID,
		CreatedAt:    time.Now(),
	}, nil
}
