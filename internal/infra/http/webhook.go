// File: internal/infra/http/webhook.go
package http

import (
	"errors"
	"io"
	"net/http"

	"docstudio/internal/domain"
	"docstudio/internal/infra/metrics"
	"docstudio/internal/usecase"
)

// maxWebhookBody caps a delivery at 1 MiB; real events are far smaller.
const maxWebhookBody = 1 << 20

// handlePaymentWebhook is the inbound processor endpoint. The contract
// with the processor: 2xx means "consumed, do not redeliver", anything
// else means "redeliver later". So verification failures are rejected,
// but a missing correlation is surfaced as an error on purpose, to
// trigger redelivery once the pending row lands.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	sig := r.Header.Get("X-Signature")
	if isJSONArray(payload) {
		s.handleWebhookBatch(w, r, payload, sig)
		return
	}

	ev, err := s.verifier.VerifyAndDecode(payload, sig)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationFailed) {
			metrics.IncWebhookEvent("unknown", "rejected")
			s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook signature rejected")
			writeError(w, http.StatusUnauthorized, "signature verification failed")
			return
		}
		metrics.IncWebhookEvent("unknown", "malformed")
		writeError(w, http.StatusBadRequest, "malformed event")
		return
	}

	if err := s.reconciler.Apply(r.Context(), ev); err != nil {
		if errors.Is(err, domain.ErrCorrelationMissing) {
			// Not consumed: the processor will redeliver and the pending
			// row should exist by then.
			writeError(w, http.StatusConflict, "no matching checkout yet")
			return
		}
		s.log.Error().Err(err).Str("event_id", ev.ID).Msg("event application failed")
		writeError(w, http.StatusInternalServerError, "event application failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleWebhookBatch applies every event in an array delivery. A non-2xx
// answer makes the processor redeliver the whole batch; already-applied
// events dedupe to no-ops on the second pass, so that is safe.
func (s *Server) handleWebhookBatch(w http.ResponseWriter, r *http.Request, payload []byte, sig string) {
	events, err := s.verifier.VerifyAndDecodeBatch(payload, sig)
	if err != nil {
		if errors.Is(err, domain.ErrVerificationFailed) {
			metrics.IncWebhookEvent("unknown", "rejected")
			s.log.Warn().Str("remote", r.RemoteAddr).Msg("webhook batch signature rejected")
			writeError(w, http.StatusUnauthorized, "signature verification failed")
			return
		}
		metrics.IncWebhookEvent("unknown", "malformed")
		writeError(w, http.StatusBadRequest, "malformed batch")
		return
	}

	if err := usecase.ApplyBatch(r.Context(), s.reconciler, events); err != nil {
		if errors.Is(err, domain.ErrCorrelationMissing) {
			writeError(w, http.StatusConflict, "no matching checkout yet")
			return
		}
		s.log.Error().Err(err).Int("events", len(events)).Msg("batch application failed")
		writeError(w, http.StatusInternalServerError, "event application failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func isJSONArray(payload []byte) bool {
	for _, b := range payload {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
