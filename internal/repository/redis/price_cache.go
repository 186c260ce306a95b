package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"deltaoption/internal/domain/pricefeed"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
)

// Compile-time check
var _ pricefeed.Cache = (*PriceCache)(nil)

// PriceCache implements pricefeed.Cache using Redis. Prices are stored
// as raw 18-decimal integer strings.
type PriceCache struct {
	client *redis.Client
}

// NewPriceCache creates a new price cache
func NewPriceCache(client *redis.Client) *PriceCache {
	return &PriceCache{client: client}
}

// Get retrieves the cached price for a symbol
func (c *PriceCache) Get(ctx context.Context, symbol string) (fixedpoint.Value, error) {
	data, err := c.client.Get(ctx, c.key(symbol)).Result()
	if err == redis.Nil {
		return fixedpoint.Value{}, errors.Wrapf(errors.ErrNotFound, "no cached price for %s", symbol)
	}
	if err != nil {
		return fixedpoint.Value{}, errors.Wrapf(err, "get cached price for %s", symbol)
	}

	price, err := fixedpoint.Parse(data)
	if err != nil {
		return fixedpoint.Value{}, errors.Wrapf(err, "parse cached price for %s", symbol)
	}

	return price, nil
}

// Set stores the price with a TTL
func (c *PriceCache) Set(ctx context.Context, symbol string, price fixedpoint.Value, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(symbol), price.String(), ttl).Err(); err != nil {
		return errors.Wrapf(err, "cache price for %s", symbol)
	}
	return nil
}

func (c *PriceCache) key(symbol string) string {
	return fmt.Sprintf("price:%s", symbol)
}
