// Package events defines the lifecycle and price-tick events the ledger
// publishes for downstream consumers.
package events

import (
	"time"

	"github.com/google/uuid"

	"deltaoption/internal/domain/option"
	"deltaoption/internal/domain/pricefeed"
)

// Type identifies an event
type Type string

const (
	TypeOptionWritten   Type = "option.written"
	TypeOptionBought    Type = "option.bought"
	TypeOptionExercised Type = "option.exercised"
	TypeOptionCanceled  Type = "option.canceled"
	TypeOptionReclaimed Type = "option.reclaimed"
	TypePriceTick       Type = "price.tick"
)

// OptionEvent is emitted on every option state transition. Fixed-point
// fields carry raw 18-decimal integer strings.
type OptionEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       Type      `json:"type"`
	Symbol     string    `json:"symbol"`
	OptionID   int64     `json:"option_id"`
	Writer     string    `json:"writer"`
	Buyer      string    `json:"buyer,omitempty"`
	Strike     string    `json:"strike"`
	Premium    string    `json:"premium"`
	Amount     string    `json:"amount"`
	Expiry     time.Time `json:"expiry"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOptionEvent builds a lifecycle event from the option's current state
func NewOptionEvent(typ Type, o *option.Option) *OptionEvent {
	return &OptionEvent{
		EventID:    uuid.New(),
		Type:       typ,
		Symbol:     o.Symbol,
		OptionID:   o.ID,
		Writer:     o.Writer,
		Buyer:      o.Buyer,
		Strike:     o.Strike.String(),
		Premium:    o.Premium.String(),
		Amount:     o.Amount.String(),
		Expiry:     o.Expiry,
		Status:     o.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
}

// PriceTickEvent is emitted for every collected oracle price
type PriceTickEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       Type      `json:"type"`
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	PriceRaw   string    `json:"price_raw"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPriceTickEvent builds a tick event from a history tick
func NewPriceTickEvent(tick pricefeed.Tick) *PriceTickEvent {
	return &PriceTickEvent{
		EventID:    uuid.New(),
		Type:       TypePriceTick,
		Symbol:     tick.Symbol,
		Price:      tick.Price,
		PriceRaw:   tick.PriceRaw,
		Source:     tick.Source,
		OccurredAt: tick.At,
	}
}
