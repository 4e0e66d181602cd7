// File: internal/usecase/reconcile_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"docstudio/internal/domain"
	"docstudio/internal/domain/model"
	"docstudio/internal/domain/ports/repository"
	"docstudio/internal/infra/metrics"
)

// ReconcilerUseCase applies verified payment events to entitlement
// state. The caller has already verified the payload signature; this
// layer owns dedup and the state transition, both inside one
// transaction so a crash can never split them.
type ReconcilerUseCase interface {
	// Apply processes one event. Redelivery of an already-processed
	// event returns nil with no effect. A checkout_confirmed with no
	// matching pending row returns domain.ErrCorrelationMissing; the
	// event is NOT recorded as processed so that a later redelivery can
	// succeed once the pending row is visible (covers the race where
	// the processor outpaces our pending-row commit).
	Apply(ctx context.Context, ev *model.PaymentEvent) error
}

var _ ReconcilerUseCase = (*reconcilerUC)(nil)

type reconcilerUC struct {
	tm        repository.TransactionManager
	subs      repository.SubscriptionRepository
	checkouts repository.CheckoutRepository
	processed repository.ProcessedEventRepository
	locker    Locker
	log       *zerolog.Logger
}

func NewReconcilerUseCase(
	tm repository.TransactionManager,
	subs repository.SubscriptionRepository,
	checkouts repository.CheckoutRepository,
	processed repository.ProcessedEventRepository,
	locker Locker,
	logger *zerolog.Logger,
) *reconcilerUC {
	return &reconcilerUC{tm: tm, subs: subs, checkouts: checkouts, processed: processed, locker: locker, log: logger}
}

func (u *reconcilerUC) Apply(ctx context.Context, ev *model.PaymentEvent) error {
	if ev == nil || ev.ID == "" {
		return domain.ErrInvalidArgument
	}

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		fresh, err := u.processed.MarkProcessed(ctx, tx, ev.ID)
		if err != nil {
			return fmt.Errorf("mark processed: %w", err)
		}
		if !fresh {
			metrics.IncWebhookEvent(string(ev.Kind), "duplicate")
			u.log.Debug().Str("event_id", ev.ID).Msg("duplicate event, no-op")
			return nil
		}
		return u.apply(ctx, tx, ev)
	})

	switch {
	case err == nil:
		metrics.IncWebhookEvent(string(ev.Kind), "applied")
		return nil
	case errors.Is(err, domain.ErrCorrelationMissing):
		metrics.IncWebhookEvent(string(ev.Kind), "correlation_missing")
		u.log.Warn().Str("event_id", ev.ID).Str("session_id", ev.SessionID).
			Msg("event has no matching pending checkout")
		return err
	default:
		metrics.IncWebhookEvent(string(ev.Kind), "error")
		return err
	}
}

// apply runs inside the dedup transaction. Returning an error rolls the
// dedup record back together with any partial state change.
func (u *reconcilerUC) apply(ctx context.Context, tx repository.Tx, ev *model.PaymentEvent) error {
	switch ev.Kind {
	case model.EventCheckoutConfirmed:
		return u.applyCheckoutConfirmed(ctx, tx, ev)
	case model.EventSubscriptionUpdated:
		return u.applyLifecycle(ctx, tx, ev, ev.SubscriptionStatus)
	case model.EventSubscriptionCanceled:
		return u.applyLifecycle(ctx, tx, ev, model.SubscriptionStatusCanceled)
	case model.EventUnrecognized:
		// forward-compatible: consumed without effect
		u.log.Info().Str("event_id", ev.ID).Str("kind", ev.RawKind).Msg("ignoring unrecognized event kind")
		return nil
	default:
		return nil
	}
}

func (u *reconcilerUC) applyCheckoutConfirmed(ctx context.Context, tx repository.Tx, ev *model.PaymentEvent) error {
	co, err := u.checkouts.FindUnconsumed(ctx, tx, ev.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCorrelationMissing
		}
		return fmt.Errorf("find pending checkout: %w", err)
	}

	// Serialize per-user entitlement writes with ActivateFree and with a
	// concurrent confirmation for the same user, so the supersede in
	// Upsert cannot race another uncommitted active row. Failing to get
	// the lock rolls the whole event back; the processor redelivers.
	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, "entitlement:"+co.UserID, 10*time.Second)
		if err != nil {
			return err
		}
		defer func() { _ = u.locker.Unlock(ctx, "entitlement:"+co.UserID, token) }()
	}

	if err := u.checkouts.MarkConsumed(ctx, tx, co.SessionID); err != nil {
		return fmt.Errorf("consume checkout: %w", err)
	}

	sub, err := model.NewActiveSubscription(uuid.NewString(), co.UserID, co.TargetPlanID)
	if err != nil {
		return err
	}
	sub.ExternalSessionID = &co.SessionID
	if ev.ExternalSubscriptionID != "" {
		sub.ExternalSubscriptionID = &ev.ExternalSubscriptionID
	}
	if err := u.subs.Upsert(ctx, tx, sub); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}
	metrics.IncSubscriptionActivation(co.TargetPlanID)
	u.log.Info().Str("user_id", co.UserID).Str("plan_id", co.TargetPlanID).
		Str("session_id", co.SessionID).Msg("subscription activated from checkout")
	return nil
}

func (u *reconcilerUC) applyLifecycle(ctx context.Context, tx repository.Tx, ev *model.PaymentEvent, status model.SubscriptionStatus) error {
	if ev.ExternalSubscriptionID == "" {
		return domain.ErrCorrelationMissing
	}
	sub, err := u.subs.FindByExternalSubscriptionID(ctx, tx, ev.ExternalSubscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCorrelationMissing
		}
		return fmt.Errorf("find subscription: %w", err)
	}
	if status == "" {
		status = model.SubscriptionStatusActive
	}
	if err := u.subs.UpdateStatus(ctx, tx, sub.UserID, sub.ID, status); err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	u.log.Info().Str("subscription_id", sub.ID).Str("status", string(status)).
		Msg("subscription lifecycle updated")
	return nil
}

// ApplyBatch feeds each event through Apply independently. One bad
// event never blocks the rest; the first error is reported after the
// whole batch has been attempted.
func ApplyBatch(ctx context.Context, u ReconcilerUseCase, events []*model.PaymentEvent) error {
	var first error
	for _, ev := range events {
		if err := u.Apply(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
