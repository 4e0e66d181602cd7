package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
)

var _ adapter.EventVerifier = (*HMACVerifier)(nil)

// HMACVerifier authenticates deliveries with the shared webhook secret:
// signature = hex(HMAC-SHA256(secret, raw payload)).
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

type wireEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		SessionID      string `json:"session_id"`
		SubscriptionID string `json:"subscription_id"`
		Status         string `json:"status"`
		Metadata       struct {
			UserID string `json:"user_id"`
			PlanID string `json:"plan_id"`
		} `json:"metadata"`
	} `json:"data"`
}

func (v *HMACVerifier) VerifyAndDecode(payload []byte, signature string) (*model.PaymentEvent, error) {
	if err := v.verify(payload, signature); err != nil {
		return nil, err
	}
	return decodeOne(payload)
}

// VerifyAndDecodeBatch accepts either a JSON array of events or a single
// event object. The signature covers the raw payload either way.
func (v *HMACVerifier) VerifyAndDecodeBatch(payload []byte, signature string) ([]*model.PaymentEvent, error) {
	if err := v.verify(payload, signature); err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(payload, &raws); err != nil {
		ev, err := decodeOne(payload)
		if err != nil {
			return nil, err
		}
		return []*model.PaymentEvent{ev}, nil
	}

	events := make([]*model.PaymentEvent, 0, len(raws))
	for _, raw := range raws {
		ev, err := decodeOne(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (v *HMACVerifier) verify(payload []byte, signature string) error {
	h := hmac.New(sha256.New, v.secret)
	h.Write(payload)
	expected := h.Sum(nil)

	given, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, given) {
		return domain.ErrVerificationFailed
	}
	return nil
}

func decodeOne(payload []byte) (*model.PaymentEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: malformed event payload", domain.ErrInvalidArgument)
	}
	if w.ID == "" {
		return nil, fmt.Errorf("%w: event without id", domain.ErrInvalidArgument)
	}

	ev := &model.PaymentEvent{
		ID:                     w.ID,
		Kind:                   model.ParseEventKind(w.Type),
		RawKind:                w.Type,
		SessionID:              w.Data.SessionID,
		ExternalSubscriptionID: w.Data.SubscriptionID,
		SubscriptionStatus:     mapStatus(w.Data.Status),
		UserID:                 w.Data.Metadata.UserID,
		PlanID:                 w.Data.Metadata.PlanID,
	}
	if w.Created > 0 {
		ev.OccurredAt = time.Unix(w.Created, 0).UTC()
	}
	return ev, nil
}

func mapStatus(raw string) model.SubscriptionStatus {
	switch raw {
	case "active":
		return model.SubscriptionStatusActive
	case "past_due":
		return model.SubscriptionStatusPastDue
	case "canceled":
		return model.SubscriptionStatusCanceled
	default:
		return ""
	}
}
