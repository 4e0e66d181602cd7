package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"docstudio/internal/domain/ports/repository"
)

// CheckoutSweeper periodically deletes pending checkout rows that were
// never confirmed. Abandoned checkouts are the common case (user closed
// the tab); without the sweep the table grows without bound.
type CheckoutSweeper struct {
	checkouts  repository.CheckoutRepository
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old an unconsumed row must be
	log        *zerolog.Logger
}

func NewCheckoutSweeper(checkouts repository.CheckoutRepository, interval, staleAfter time.Duration, logger *zerolog.Logger) *CheckoutSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &CheckoutSweeper{checkouts: checkouts, interval: interval, staleAfter: staleAfter, log: logger}
}

func (w *CheckoutSweeper) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *CheckoutSweeper) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	n, err := w.checkouts.DeleteStale(ctx, repository.NoTX, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("checkout-sweeper: delete stale failed")
		return
	}
	if n > 0 {
		w.log.Info().Int("deleted", n).Msg("checkout-sweeper: removed stale checkouts")
	}
}
