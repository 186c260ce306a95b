package workers

import (
	"context"
	"time"

	"deltaoption/internal/domain/escrow"
	"deltaoption/internal/domain/option"
	"deltaoption/internal/metrics"
	"deltaoption/pkg/errors"
)

// ExpiryMonitorWorker tracks expired options whose collateral is still
// locked in the pool. Reclamation stays writer-initiated; the monitor
// only surfaces the backlog and the pool balance as gauges.
type ExpiryMonitorWorker struct {
	*BaseWorker
	options option.Repository
	journal escrow.Repository
}

// NewExpiryMonitorWorker creates a new expiry monitor
func NewExpiryMonitorWorker(
	options option.Repository,
	journal escrow.Repository,
	interval time.Duration,
	enabled bool,
) *ExpiryMonitorWorker {
	return &ExpiryMonitorWorker{
		BaseWorker: NewBaseWorker("expiry_monitor", interval, enabled),
		options:    options,
		journal:    journal,
	}
}

// Run refreshes the expired-backlog and locked-escrow gauges
func (w *ExpiryMonitorWorker) Run(ctx context.Context) error {
	expired, err := w.options.ListExpiredOpen(ctx, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to list expired open options")
	}
	metrics.ExpiredUnreclaimed.Set(float64(len(expired)))

	locked, err := w.journal.LockedTotal(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read locked escrow total")
	}
	f, _ := locked.Decimal().Float64()
	metrics.EscrowLocked.Set(f)

	if len(expired) > 0 {
		w.Log().Infow("Expired options awaiting reclamation",
			"count", len(expired),
			"locked_total", locked.Decimal(),
		)
	}

	return nil
}
