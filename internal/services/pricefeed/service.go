package pricefeed

import (
	"context"
	"time"

	"deltaoption/internal/domain/pricefeed"
	"deltaoption/internal/events"
	"deltaoption/internal/metrics"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

// Broadcaster pushes collected ticks to live subscribers
type Broadcaster interface {
	BroadcastTick(tick pricefeed.Tick)
}

// Service fronts the price oracle with a short-lived cache and archives
// every collected tick. It returns the oracle's raw last value without
// staleness validation; freshness is bounded only by the cache TTL and
// the collector interval.
type Service struct {
	source      pricefeed.Source
	cache       pricefeed.Cache
	history     pricefeed.History
	publisher   events.Publisher
	broadcaster Broadcaster
	cacheTTL    time.Duration
	log         *logger.Logger
}

// NewService creates a new price feed service. The broadcaster may be
// nil when no live stream is attached.
func NewService(
	source pricefeed.Source,
	cache pricefeed.Cache,
	history pricefeed.History,
	publisher events.Publisher,
	broadcaster Broadcaster,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		source:      source,
		cache:       cache,
		history:     history,
		publisher:   publisher,
		broadcaster: broadcaster,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

// USDPrice returns the latest price for a symbol, served from cache
// when fresh enough, otherwise straight from the oracle
func (s *Service) USDPrice(ctx context.Context, symbol string) (fixedpoint.Value, error) {
	if price, err := s.cache.Get(ctx, symbol); err == nil {
		metrics.OracleRequests.WithLabelValues(symbol, "cache_hit").Inc()
		return price, nil
	}

	price, err := s.source.LatestPrice(ctx, symbol)
	if err != nil {
		metrics.OracleRequests.WithLabelValues(symbol, "error").Inc()
		return fixedpoint.Value{}, err
	}
	metrics.OracleRequests.WithLabelValues(symbol, "success").Inc()

	f, _ := price.Decimal().Float64()
	metrics.OraclePrice.WithLabelValues(symbol).Set(f)

	if err := s.cache.Set(ctx, symbol, price, s.cacheTTL); err != nil {
		s.log.Warnw("Failed to cache oracle price",
			"symbol", symbol,
			"error", err,
		)
	}

	return price, nil
}

// Collect fetches a fresh oracle price, refreshes the cache, archives
// the tick, publishes it, and feeds live subscribers. Zero prices are
// rejected: they must never reach cost computation or history.
func (s *Service) Collect(ctx context.Context, symbol string) (pricefeed.Tick, error) {
	price, err := s.source.LatestPrice(ctx, symbol)
	if err != nil {
		metrics.OracleRequests.WithLabelValues(symbol, "error").Inc()
		return pricefeed.Tick{}, err
	}

	if price.Sign() <= 0 {
		metrics.OracleRequests.WithLabelValues(symbol, "error").Inc()
		return pricefeed.Tick{}, errors.Wrapf(errors.ErrZeroPrice, "symbol %s", symbol)
	}
	metrics.OracleRequests.WithLabelValues(symbol, "success").Inc()

	f, _ := price.Decimal().Float64()
	metrics.OraclePrice.WithLabelValues(symbol).Set(f)

	if err := s.cache.Set(ctx, symbol, price, s.cacheTTL); err != nil {
		s.log.Warnw("Failed to cache oracle price",
			"symbol", symbol,
			"error", err,
		)
	}

	tick := pricefeed.NewTick(symbol, price, s.source.Name(), time.Now())

	if err := s.history.InsertTicks(ctx, []pricefeed.Tick{tick}); err != nil {
		return pricefeed.Tick{}, errors.Wrap(err, "failed to archive tick")
	}

	if err := s.publisher.PublishTick(ctx, events.NewPriceTickEvent(tick)); err != nil {
		s.log.Warnw("Failed to publish tick event",
			"symbol", symbol,
			"error", err,
		)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTick(tick)
	}

	s.log.Debugw("Collected oracle price",
		"symbol", symbol,
		"price", tick.Price,
	)

	return tick, nil
}

// History returns archived ticks matching the query
func (s *Service) History(ctx context.Context, query pricefeed.TickQuery) ([]pricefeed.Tick, error) {
	return s.history.GetTicks(ctx, query)
}
