package pricefeed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deltaoption/internal/domain/pricefeed"
	"deltaoption/internal/events"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
	"deltaoption/pkg/logger"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSource) LatestPrice(ctx context.Context, symbol string) (fixedpoint.Value, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(fixedpoint.Value), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, symbol string) (fixedpoint.Value, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(fixedpoint.Value), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, symbol string, price fixedpoint.Value, ttl time.Duration) error {
	args := m.Called(ctx, symbol, price, ttl)
	return args.Error(0)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) InsertTicks(ctx context.Context, ticks []pricefeed.Tick) error {
	args := m.Called(ctx, ticks)
	return args.Error(0)
}

func (m *MockHistory) GetTicks(ctx context.Context, query pricefeed.TickQuery) ([]pricefeed.Tick, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricefeed.Tick), args.Error(1)
}

type tickCollector struct {
	ticks []pricefeed.Tick
}

func (c *tickCollector) BroadcastTick(tick pricefeed.Tick) {
	c.ticks = append(c.ticks, tick)
}

const ttl = 15 * time.Second

func TestUSDPriceCacheHit(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	cached := fixedpoint.Whole(1800)
	cache.On("Get", mock.Anything, "ETH").Return(cached, nil)

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	price, err := svc.USDPrice(context.Background(), "ETH")
	require.NoError(t, err)
	assert.True(t, cached.Equal(price))

	// The oracle must not be touched on a cache hit.
	source.AssertNotCalled(t, "LatestPrice", mock.Anything, mock.Anything)
}

func TestUSDPriceCacheMiss(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	fresh := fixedpoint.Whole(1750)
	cache.On("Get", mock.Anything, "ETH").Return(fixedpoint.Value{}, errors.ErrNotFound)
	source.On("LatestPrice", mock.Anything, "ETH").Return(fresh, nil)
	cache.On("Set", mock.Anything, "ETH", fresh, ttl).Return(nil)

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	price, err := svc.USDPrice(context.Background(), "ETH")
	require.NoError(t, err)
	assert.True(t, fresh.Equal(price))

	cache.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestUSDPriceCacheMissOracleDown(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	cache.On("Get", mock.Anything, "ETH").Return(fixedpoint.Value{}, errors.ErrNotFound)
	source.On("LatestPrice", mock.Anything, "ETH").Return(fixedpoint.Value{}, errors.ErrOracleUnavailable)

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	_, err := svc.USDPrice(context.Background(), "ETH")
	assert.ErrorIs(t, err, errors.ErrOracleUnavailable)
}

func TestUSDPriceSurvivesCacheWriteFailure(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	fresh := fixedpoint.Whole(1750)
	cache.On("Get", mock.Anything, "ETH").Return(fixedpoint.Value{}, errors.ErrNotFound)
	source.On("LatestPrice", mock.Anything, "ETH").Return(fresh, nil)
	cache.On("Set", mock.Anything, "ETH", fresh, ttl).Return(errors.New("redis down"))

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	price, err := svc.USDPrice(context.Background(), "ETH")
	require.NoError(t, err)
	assert.True(t, fresh.Equal(price))
}

func TestCollect(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)
	bcast := &tickCollector{}

	fresh := fixedpoint.Whole(1800)
	source.On("LatestPrice", mock.Anything, "ETH").Return(fresh, nil)
	source.On("Name").Return("band")
	cache.On("Set", mock.Anything, "ETH", fresh, ttl).Return(nil)
	history.On("InsertTicks", mock.Anything, mock.MatchedBy(func(ticks []pricefeed.Tick) bool {
		return len(ticks) == 1 && ticks[0].Symbol == "ETH" && ticks[0].Price == 1800 &&
			ticks[0].PriceRaw == "1800000000000000000000" && ticks[0].Source == "band"
	})).Return(nil)

	svc := NewService(source, cache, history, events.NoopPublisher{}, bcast, ttl, logger.Get())

	tick, err := svc.Collect(context.Background(), "ETH")
	require.NoError(t, err)
	assert.Equal(t, "ETH", tick.Symbol)
	assert.Equal(t, float64(1800), tick.Price)
	assert.Equal(t, "1800000000000000000000", tick.PriceRaw)
	assert.Equal(t, "band", tick.Source)

	// The archived raw string round-trips to the exact oracle price.
	exact, err := tick.PriceValue()
	require.NoError(t, err)
	assert.True(t, fresh.Equal(exact))

	// Live subscribers receive the same tick.
	require.Len(t, bcast.ticks, 1)
	assert.Equal(t, tick, bcast.ticks[0])

	cache.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestCollectRejectsZeroPrice(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	source.On("LatestPrice", mock.Anything, "ETH").Return(fixedpoint.Value{}, nil)

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	_, err := svc.Collect(context.Background(), "ETH")
	assert.ErrorIs(t, err, errors.ErrZeroPrice)

	// Nothing cached, archived, or broadcast for a rejected price.
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "InsertTicks", mock.Anything, mock.Anything)
}

func TestCollectHistoryFailureIsFatal(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	fresh := fixedpoint.Whole(1800)
	source.On("LatestPrice", mock.Anything, "ETH").Return(fresh, nil)
	source.On("Name").Return("band")
	cache.On("Set", mock.Anything, "ETH", fresh, ttl).Return(nil)
	history.On("InsertTicks", mock.Anything, mock.Anything).Return(errors.New("clickhouse down"))

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	_, err := svc.Collect(context.Background(), "ETH")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	source := new(MockSource)
	cache := new(MockCache)
	history := new(MockHistory)

	query := pricefeed.TickQuery{Symbol: "ETH", Limit: 10}
	want := []pricefeed.Tick{{Symbol: "ETH", Price: 1800, Source: "band"}}
	history.On("GetTicks", mock.Anything, query).Return(want, nil)

	svc := NewService(source, cache, history, events.NoopPublisher{}, nil, ttl, logger.Get())

	got, err := svc.History(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
