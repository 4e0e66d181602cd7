package model

import "time"

// EventKind is the closed set of payment-processor event kinds this
// system acts on. Anything else maps to EventUnrecognized and is
// accepted as a no-op so new processor event types never break intake.
type EventKind string

const (
	EventCheckoutConfirmed    EventKind = "checkout_confirmed"
	EventSubscriptionUpdated  EventKind = "subscription_updated"
	EventSubscriptionCanceled EventKind = "subscription_canceled"
	EventUnrecognized         EventKind = "unrecognized"
)

// ParseEventKind maps a raw processor type string onto the closed set.
func ParseEventKind(raw string) EventKind {
	switch raw {
	case string(EventCheckoutConfirmed):
		return EventCheckoutConfirmed
	case string(EventSubscriptionUpdated):
		return EventSubscriptionUpdated
	case string(EventSubscriptionCanceled):
		return EventSubscriptionCanceled
	default:
		return EventUnrecognized
	}
}

// PaymentEvent is one verified, decoded processor delivery. Only the
// fields relevant to its kind are populated.
type PaymentEvent struct {
	ID      string // processor event id; dedup key
	Kind    EventKind
	RawKind string // original type string, kept for logs on unrecognized kinds

	// checkout_confirmed
	SessionID string

	// subscription_updated / subscription_canceled
	ExternalSubscriptionID string
	SubscriptionStatus     SubscriptionStatus

	// defense-in-depth metadata the processor echoes back
	UserID string
	PlanID string

	OccurredAt time.Time
}

// ProcessedEvent marks an event id as applied. Append-only; presence
// alone makes a redelivery a no-op.
type ProcessedEvent struct {
	EventID     string
	ProcessedAt time.Time
}
