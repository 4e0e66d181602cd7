package adapter

import (
	"context"

	"docstudio/internal/domain/model"
)

// CheckoutSession is the processor's answer to a session-creation call.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// SessionRequest describes what to sell. Metadata carries user and plan
// ids as a fallback correlation channel; the PendingCheckout row remains
// the primary one.
type SessionRequest struct {
	UserID      string
	PlanID      string
	AmountCents int64
	Currency    string
	ProductName string
	OneTime     bool
	SuccessURL  string
	CancelURL   string
}

// PaymentProcessor is the outbound boundary to the external payment
// provider.
type PaymentProcessor interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error)
}

// EventVerifier authenticates and decodes inbound processor deliveries.
// Verification happens before anything else touches state; a payload
// failing it never reaches the reconciler.
type EventVerifier interface {
	VerifyAndDecode(payload []byte, signature string) (*model.PaymentEvent, error)

	// VerifyAndDecodeBatch handles array deliveries; a single object
	// payload decodes to a one-element slice.
	VerifyAndDecodeBatch(payload []byte, signature string) ([]*model.PaymentEvent, error)
}
