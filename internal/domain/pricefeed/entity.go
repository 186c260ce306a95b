package pricefeed

import (
	"time"

	"github.com/shopspring/decimal"

	"deltaoption/pkg/fixedpoint"
)

// Tick is one observed oracle price for a symbol. PriceRaw keeps the
// exact 18-decimal integer the oracle published; Price is a float64
// rendering of it for gauges and charting queries.
type Tick struct {
	Symbol   string    `ch:"symbol"`
	Price    float64   `ch:"price"`
	PriceRaw string    `ch:"price_raw"`
	Source   string    `ch:"source"`
	At       time.Time `ch:"ts"`
}

// NewTick builds a history tick from a fixed-point oracle price
func NewTick(symbol string, price fixedpoint.Value, source string, at time.Time) Tick {
	f, _ := price.Decimal().Float64()
	return Tick{
		Symbol:   symbol,
		Price:    f,
		PriceRaw: price.String(),
		Source:   source,
		At:       at.UTC(),
	}
}

// PriceValue returns the exact fixed-point price the tick was built from
func (t Tick) PriceValue() (fixedpoint.Value, error) {
	return fixedpoint.Parse(t.PriceRaw)
}

// PriceDecimal returns the tick price as a decimal for rendering
func (t Tick) PriceDecimal() decimal.Decimal {
	if v, err := t.PriceValue(); err == nil {
		return v.Decimal()
	}
	return decimal.NewFromFloat(t.Price)
}

// TickQuery filters historic ticks
type TickQuery struct {
	Symbol    string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}
