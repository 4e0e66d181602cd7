// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/adapter"
	"docstudio/internal/domain/ports/repository"
	"docstudio/internal/infra/metrics"
)

// sessionCreateTimeout bounds the outbound processor call; on expiry the
// attempt is reported failed, never silently retried.
const sessionCreateTimeout = 15 * time.Second

// Locker serializes per-user entitlement writes that race with the
// reconciler (free activation vs. an in-flight confirmation event).
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type CheckoutUseCase interface {
	// Start creates a processor session for a paid plan and persists the
	// pending row before returning, so a fast confirmation event can
	// always find it.
	Start(ctx context.Context, userID, planID, successURL, cancelURL string) (*adapter.CheckoutSession, error)

	// ActivateFree activates the starter plan synchronously, bypassing
	// the processor. Idempotent when starter is already active.
	ActivateFree(ctx context.Context, userID, planID string) (*model.Subscription, error)
}

var _ CheckoutUseCase = (*checkoutUC)(nil)

type checkoutUC struct {
	checkouts repository.CheckoutRepository
	subs      repository.SubscriptionRepository
	processor adapter.PaymentProcessor
	locker    Locker
	log       *zerolog.Logger
}

func NewCheckoutUseCase(
	checkouts repository.CheckoutRepository,
	subs repository.SubscriptionRepository,
	processor adapter.PaymentProcessor,
	locker Locker,
	logger *zerolog.Logger,
) *checkoutUC {
	return &checkoutUC{checkouts: checkouts, subs: subs, processor: processor, locker: locker, log: logger}
}

func (u *checkoutUC) Start(ctx context.Context, userID, planID, successURL, cancelURL string) (*adapter.CheckoutSession, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !model.KnownPlan(planID) {
		return nil, fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidArgument, planID)
	}
	plan := model.ResolvePlan(planID)
	if plan.Free() {
		// free tier has its own synchronous path
		return nil, fmt.Errorf("%w: plan %q is free, use ActivateFree", domain.ErrInvalidArgument, planID)
	}

	cctx, cancel := context.WithTimeout(ctx, sessionCreateTimeout)
	defer cancel()
	session, err := u.processor.CreateSession(cctx, adapter.SessionRequest{
		UserID:      userID,
		PlanID:      plan.ID,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		ProductName: plan.Name,
		OneTime:     plan.OneTime,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
	})
	if err != nil {
		metrics.IncCheckout("session_failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	co, err := model.NewPendingCheckout(session.SessionID, userID, plan.ID)
	if err != nil {
		return nil, err
	}
	// Persist before handing back the redirect: a buyer completing
	// payment immediately must not outrun the reconciler's lookup.
	if err := u.checkouts.Save(ctx, repository.NoTX, co); err != nil {
		metrics.IncCheckout("persist_failed")
		return nil, fmt.Errorf("persist pending checkout: %w", err)
	}

	metrics.IncCheckout("started")
	u.log.Info().Str("user_id", userID).Str("plan_id", plan.ID).
		Str("session_id", session.SessionID).Msg("checkout started")
	return session, nil
}

func (u *checkoutUC) ActivateFree(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	plan := model.ResolvePlan(planID)
	if plan.IsZero() || plan.ID == model.PlanNone || !plan.Free() {
		return nil, fmt.Errorf("%w: only the free tier can be activated directly", domain.ErrInvalidArgument)
	}

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, "entitlement:"+userID, 10*time.Second)
		if err != nil {
			return nil, err
		}
		defer func() { _ = u.locker.Unlock(ctx, "entitlement:"+userID, token) }()
	}

	if cur, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID); err == nil && cur.PlanID == plan.ID {
		return cur, nil // already on the free tier
	}

	sub, err := model.NewActiveSubscription(uuid.NewString(), userID, plan.ID)
	if err != nil {
		return nil, err
	}
	if err := u.subs.Upsert(ctx, repository.NoTX, sub); err != nil {
		return nil, fmt.Errorf("activate free plan: %w", err)
	}
	metrics.IncSubscriptionActivation(plan.ID)
	u.log.Info().Str("user_id", userID).Str("plan_id", plan.ID).Msg("free plan activated")
	return sub, nil
}
