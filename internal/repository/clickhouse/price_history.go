package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"deltaoption/internal/domain/pricefeed"
	"deltaoption/pkg/errors"
)

// Compile-time check
var _ pricefeed.History = (*PriceHistoryRepository)(nil)

// PriceHistoryRepository implements pricefeed.History using ClickHouse
type PriceHistoryRepository struct {
	conn driver.Conn
}

// NewPriceHistoryRepository creates a new price history repository
func NewPriceHistoryRepository(conn driver.Conn) *PriceHistoryRepository {
	return &PriceHistoryRepository{conn: conn}
}

// InsertTicks inserts oracle price ticks in batch
func (r *PriceHistoryRepository) InsertTicks(ctx context.Context, ticks []pricefeed.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO price_ticks (symbol, price, price_raw, source, ts)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, tick := range ticks {
		if err := batch.Append(tick.Symbol, tick.Price, tick.PriceRaw, tick.Source, tick.At); err != nil {
			return errors.Wrap(err, "failed to append tick")
		}
	}

	return batch.Send()
}

// GetTicks retrieves historic ticks matching the query, newest first
func (r *PriceHistoryRepository) GetTicks(ctx context.Context, query pricefeed.TickQuery) ([]pricefeed.Tick, error) {
	var ticks []pricefeed.Tick

	sql := `
		SELECT symbol, price, price_raw, source, ts
		FROM price_ticks
		WHERE symbol = $1`

	args := []interface{}{query.Symbol}

	if !query.StartTime.IsZero() {
		sql += fmt.Sprintf(` AND ts >= $%d`, len(args)+1)
		args = append(args, query.StartTime)
	}

	if !query.EndTime.IsZero() {
		sql += fmt.Sprintf(` AND ts <= $%d`, len(args)+1)
		args = append(args, query.EndTime)
	}

	sql += ` ORDER BY ts DESC`

	if query.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, query.Limit)
	}

	err := r.conn.Select(ctx, &ticks, sql, args...)
	return ticks, err
}
