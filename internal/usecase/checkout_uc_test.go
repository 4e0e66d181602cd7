// File: internal/usecase/checkout_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
)

type checkoutFixture struct {
	checkouts *memCheckoutRepo
	subs      *memSubscriptionRepo
	processor *stubProcessor
	locker    *stubLocker
	uc        CheckoutUseCase
}

func newCheckoutFixture() *checkoutFixture {
	checkouts := newMemCheckoutRepo()
	subs := newMemSubscriptionRepo()
	processor := &stubProcessor{session: &adapter.CheckoutSession{
		SessionID:   "sess-new",
		RedirectURL: "https://pay.example.com/sess-new",
	}}
	locker := &stubLocker{}
	log := zerolog.Nop()
	return &checkoutFixture{
		checkouts: checkouts,
		subs:      subs,
		processor: processor,
		locker:    locker,
		uc:        NewCheckoutUseCase(checkouts, subs, processor, locker, &log),
	}
}

func TestCheckoutStart_PersistsPendingRowBeforeReturning(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()
	ctx := context.Background()

	session, err := f.uc.Start(ctx, "user-1", model.PlanPro, "https://app/ok", "https://app/cancel")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.RedirectURL == "" {
		t.Fatal("expected a redirect URL")
	}

	co, err := f.checkouts.FindUnconsumed(ctx, nil, session.SessionID)
	if err != nil {
		t.Fatalf("pending row missing after Start: %v", err)
	}
	if co.UserID != "user-1" || co.TargetPlanID != model.PlanPro {
		t.Fatalf("pending row = %+v, want user-1/pro", co)
	}

	if len(f.processor.requests) != 1 {
		t.Fatalf("processor calls = %d, want 1", len(f.processor.requests))
	}
	req := f.processor.requests[0]
	plan := model.ResolvePlan(model.PlanPro)
	if req.AmountCents != plan.PriceCents || req.Currency != plan.Currency {
		t.Fatalf("session priced %d %s, want %d %s", req.AmountCents, req.Currency, plan.PriceCents, plan.Currency)
	}
	if req.OneTime {
		t.Fatal("pro is recurring, session must not be one-time")
	}
}

func TestCheckoutStart_OneTimePlanCreatesOneTimeSession(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()

	if _, err := f.uc.Start(context.Background(), "user-1", model.PlanSingle, "", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !f.processor.requests[0].OneTime {
		t.Fatal("single-document plan must produce a one-time session")
	}
}

func TestCheckoutStart_RejectsUnknownAndFreePlans(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()
	ctx := context.Background()

	for _, planID := range []string{"gold", "", model.PlanNone, model.PlanStarter} {
		_, err := f.uc.Start(ctx, "user-1", planID, "", "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("Start(%q) err = %v, want ErrInvalidArgument", planID, err)
		}
	}
	if len(f.processor.requests) != 0 {
		t.Fatal("rejected plans must never reach the processor")
	}
}

func TestCheckoutStart_ProcessorFailureCreatesNoPendingRow(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()
	f.processor.err = errors.New("processor down")

	_, err := f.uc.Start(context.Background(), "user-1", model.PlanPro, "", "")
	if err == nil {
		t.Fatal("expected error when session creation fails")
	}
	if n, _ := f.checkouts.DeleteStale(context.Background(), nil, time.Now().Add(time.Hour)); n != 0 {
		t.Fatal("no pending row should exist after a failed session")
	}
}

func TestActivateFree_CreatesActiveStarterSubscription(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()
	ctx := context.Background()

	sub, err := f.uc.ActivateFree(ctx, "user-1", model.PlanStarter)
	if err != nil {
		t.Fatalf("ActivateFree: %v", err)
	}
	if sub.Status != model.SubscriptionStatusActive || sub.PlanID != model.PlanStarter {
		t.Fatalf("sub = %+v, want active starter", sub)
	}
	if sub.ExternalSessionID != nil {
		t.Fatal("free activation must not reference a checkout session")
	}
}

func TestActivateFree_IdempotentWhenStarterAlreadyActive(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()
	ctx := context.Background()

	first, err := f.uc.ActivateFree(ctx, "user-1", model.PlanStarter)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.uc.ActivateFree(ctx, "user-1", model.PlanStarter)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatal("repeat activation must return the existing subscription")
	}
	if n := len(f.subs.activeFor("user-1")); n != 1 {
		t.Fatalf("active subscriptions = %d, want 1", n)
	}
}

func TestActivateFree_RejectsPaidPlans(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()

	for _, planID := range []string{model.PlanPro, model.PlanSingle, model.PlanBusiness, "gold"} {
		if _, err := f.uc.ActivateFree(context.Background(), "user-1", planID); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("ActivateFree(%q) err = %v, want ErrInvalidArgument", planID, err)
		}
	}
}

func TestActivateFree_LockContentionSurfaces(t *testing.T) {
	t.Parallel()
	f := newCheckoutFixture()
	f.locker.failLock = true

	_, err := f.uc.ActivateFree(context.Background(), "user-1", model.PlanStarter)
	if !errors.Is(err, domain.ErrLockContended) {
		t.Fatalf("err = %v, want ErrLockContended", err)
	}
	if n := len(f.subs.activeFor("user-1")); n != 0 {
		t.Fatal("no subscription may be written without the lock")
	}
}
