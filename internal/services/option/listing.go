package option

import (
	"context"
	"time"

	"deltaoption/internal/domain/option"
	"deltaoption/internal/domain/pricing"
	"deltaoption/pkg/fixedpoint"
)

// expiryFormat matches the MM/DD/YYYY rendering the web client expects
const expiryFormat = "01/02/2006"

// Listing is the client-facing read model for one option: fixed-point
// quantities rescaled to human-decimal strings, expiry as a date string.
type Listing struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Writer     string    `json:"writer"`
	Buyer      string    `json:"buyer,omitempty"`
	Strike     string    `json:"strike"`
	Premium    string    `json:"premium"`
	Amount     string    `json:"amount"`
	LatestCost string    `json:"latestCost,omitempty"`
	Expiry     string    `json:"expiry"`
	ExpiryAt   time.Time `json:"expiryAt"`
	Exercised  bool      `json:"exercised"`
	Canceled   bool      `json:"canceled"`
	Status     string    `json:"status"`
}

// List returns the read model for every option written on a symbol.
// The latest cost is quoted against one oracle read shared by all rows;
// if the oracle is unavailable the listing degrades to empty costs
// rather than failing the read.
func (s *Service) List(ctx context.Context, symbol string) ([]Listing, error) {
	opts, err := s.repo.ListBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	price, priceErr := s.oracle.USDPrice(ctx, symbol)
	if priceErr != nil {
		s.log.Warnw("Listing without oracle price",
			"symbol", symbol,
			"error", priceErr,
		)
	}

	listings := make([]Listing, 0, len(opts))
	for _, o := range opts {
		listings = append(listings, s.toListing(o, price, priceErr == nil))
	}

	return listings, nil
}

func (s *Service) toListing(o *option.Option, price fixedpoint.Value, priced bool) Listing {
	l := Listing{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Writer:    o.Writer,
		Buyer:     o.Buyer,
		Strike:    o.Strike.Decimal().String(),
		Premium:   o.Premium.Decimal().String(),
		Amount:    o.Amount.Decimal().String(),
		Expiry:    o.Expiry.Format(expiryFormat),
		ExpiryAt:  o.Expiry,
		Exercised: o.Exercised,
		Canceled:  o.Canceled,
		Status:    o.Status().String(),
	}

	if priced {
		if cost, err := pricing.ExerciseCost(o.Strike, price, o.Amount); err == nil {
			l.LatestCost = cost.Decimal().String()
		}
	}

	return l
}
