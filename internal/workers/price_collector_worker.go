package workers

import (
	"context"
	"time"

	pricefeedsvc "deltaoption/internal/services/pricefeed"
	"deltaoption/pkg/errors"
)

// PriceCollectorWorker polls the oracle for every configured symbol,
// refreshing the price cache and archiving a tick per poll
type PriceCollectorWorker struct {
	*BaseWorker
	prices  *pricefeedsvc.Service
	symbols []string
}

// NewPriceCollectorWorker creates a new price collector
func NewPriceCollectorWorker(
	prices *pricefeedsvc.Service,
	symbols []string,
	interval time.Duration,
	enabled bool,
) *PriceCollectorWorker {
	return &PriceCollectorWorker{
		BaseWorker: NewBaseWorker("price_collector", interval, enabled),
		prices:     prices,
		symbols:    symbols,
	}
}

// Run collects one tick per symbol. A failing symbol does not stop the
// others; the first error is reported after the full sweep.
func (w *PriceCollectorWorker) Run(ctx context.Context) error {
	var firstErr error

	for _, symbol := range w.symbols {
		tick, err := w.prices.Collect(ctx, symbol)
		if err != nil {
			w.Log().Warnw("Price collection failed",
				"symbol", symbol,
				"error", err,
			)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "collect %s", symbol)
			}
			continue
		}

		w.Log().Debugw("Price collected",
			"symbol", symbol,
			"price", tick.Price,
		)
	}

	return firstErr
}
