package pricefeed

import (
	"context"
	"time"

	"deltaoption/pkg/fixedpoint"
)

// Source is the external price oracle: it supplies the latest published
// price for a symbol at 18-decimal scale. The ledger only ever reads it.
type Source interface {
	Name() string
	LatestPrice(ctx context.Context, symbol string) (fixedpoint.Value, error)
}

// Cache is a short-lived price cache in front of the oracle
type Cache interface {
	Get(ctx context.Context, symbol string) (fixedpoint.Value, error)
	Set(ctx context.Context, symbol string, price fixedpoint.Value, ttl time.Duration) error
}

// History is the append-only tick archive
type History interface {
	InsertTicks(ctx context.Context, ticks []Tick) error
	GetTicks(ctx context.Context, query TickQuery) ([]Tick, error)
}
