package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"docstudio/internal/config"
	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
)

type stubVerifier struct {
	ev    *model.PaymentEvent
	batch []*model.PaymentEvent
	err   error
}

func (v *stubVerifier) VerifyAndDecode(_ []byte, _ string) (*model.PaymentEvent, error) {
	return v.ev, v.err
}

func (v *stubVerifier) VerifyAndDecodeBatch(_ []byte, _ string) ([]*model.PaymentEvent, error) {
	return v.batch, v.err
}

type stubReconciler struct {
	applied []*model.PaymentEvent
	err     error
}

func (r *stubReconciler) Apply(_ context.Context, ev *model.PaymentEvent) error {
	r.applied = append(r.applied, ev)
	return r.err
}

func newTestServer(v *stubVerifier, rec *stubReconciler) *Server {
	log := zerolog.Nop()
	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.Server.PublicURL = "http://localhost"
	return NewServer(cfg, nil, nil, nil, rec, v, NewDownloadTokenManager("secret", 0), nil, nil, &log)
}

func postWebhook(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body))
	req.Header.Set("X-Signature", "sig")
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)
	return w
}

func TestWebhook_AppliedEventReturns200(t *testing.T) {
	t.Parallel()
	rec := &stubReconciler{}
	srv := newTestServer(&stubVerifier{ev: &model.PaymentEvent{ID: "evt_1", Kind: model.EventCheckoutConfirmed}}, rec)

	w := postWebhook(t, srv, `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(rec.applied) != 1 || rec.applied[0].ID != "evt_1" {
		t.Fatalf("reconciler saw %v", rec.applied)
	}
}

func TestWebhook_BadSignatureReturns401(t *testing.T) {
	t.Parallel()
	rec := &stubReconciler{}
	srv := newTestServer(&stubVerifier{err: domain.ErrVerificationFailed}, rec)

	w := postWebhook(t, srv, `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if len(rec.applied) != 0 {
		t.Fatal("unverified event must never reach the reconciler")
	}
}

func TestWebhook_MalformedPayloadReturns400(t *testing.T) {
	t.Parallel()
	rec := &stubReconciler{}
	srv := newTestServer(&stubVerifier{err: domain.ErrInvalidArgument}, rec)

	w := postWebhook(t, srv, `not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhook_CorrelationMissingReturnsNon2xx(t *testing.T) {
	t.Parallel()
	rec := &stubReconciler{err: domain.ErrCorrelationMissing}
	srv := newTestServer(&stubVerifier{ev: &model.PaymentEvent{ID: "evt_2", Kind: model.EventCheckoutConfirmed}}, rec)

	w := postWebhook(t, srv, `{}`)
	if w.Code < 400 {
		t.Fatalf("status = %d, want non-2xx so the processor redelivers", w.Code)
	}
}

func TestDownloadToken_RoundTrip(t *testing.T) {
	t.Parallel()
	m := NewDownloadTokenManager("secret", 0)
	tok, err := m.Mint("doc-1", model.ArtifactKindPDF)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	docID, kind, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if docID != "doc-1" || kind != model.ArtifactKindPDF {
		t.Fatalf("got (%q, %q)", docID, kind)
	}
}

func TestDownloadToken_WrongSecretRejected(t *testing.T) {
	t.Parallel()
	tok, err := NewDownloadTokenManager("secret-a", 0).Mint("doc-1", model.ArtifactKindPDF)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, _, err := NewDownloadTokenManager("secret-b", 0).Verify(tok); err == nil {
		t.Fatal("token signed with a different secret must not verify")
	}
}

func TestAPIRequiresUserIdentity(t *testing.T) {
	t.Parallel()
	srv := newTestServer(&stubVerifier{}, &stubReconciler{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestWebhook_BatchDeliveryAppliesAllEvents(t *testing.T) {
	t.Parallel()
	rec := &stubReconciler{}
	srv := newTestServer(&stubVerifier{batch: []*model.PaymentEvent{
		{ID: "evt_1", Kind: model.EventCheckoutConfirmed},
		{ID: "evt_2", Kind: model.EventSubscriptionCanceled},
	}}, rec)

	w := postWebhook(t, srv, `[{}, {}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(rec.applied) != 2 || rec.applied[0].ID != "evt_1" || rec.applied[1].ID != "evt_2" {
		t.Fatalf("reconciler saw %v", rec.applied)
	}
}

func TestWebhook_BatchFailureIsNotConsumed(t *testing.T) {
	t.Parallel()
	rec := &stubReconciler{err: domain.ErrCorrelationMissing}
	srv := newTestServer(&stubVerifier{batch: []*model.PaymentEvent{
		{ID: "evt_1", Kind: model.EventCheckoutConfirmed},
	}}, rec)

	w := postWebhook(t, srv, `[{}]`)
	if w.Code < 400 {
		t.Fatalf("status = %d, want non-2xx so the batch is redelivered", w.Code)
	}
}
