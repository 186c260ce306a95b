// Package pricing computes exercise costs from oracle prices.
//
// All inputs are 18-decimal fixed-point integers; the quoted cost is an
// 8-decimal fixed-point integer, matching common price-feed precision.
// Both divisions truncate toward zero, so a quote is never above the
// exact rational value.
package pricing

import (
	"math/big"

	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
)

// ExerciseCost returns the cost of exercising an option covering amount
// units at the given strike, against the current oracle price:
//
//	cost = floor( floor(amount / 10^10) * strike / currentPrice )
//
// The amount is first rescaled from 18 to 8 decimals; the strike/price
// ratio is scale-invariant, so proportionally scaled inputs quote the
// same cost. A zero or negative current price is an oracle error, never
// a division.
func ExerciseCost(strike, currentPrice, amount fixedpoint.Value) (fixedpoint.Cost, error) {
	if currentPrice.Sign() <= 0 {
		return fixedpoint.Cost{}, errors.ErrZeroPrice
	}
	if strike.Sign() <= 0 {
		return fixedpoint.Cost{}, errors.Wrap(errors.ErrInvalidInput, "strike must be positive")
	}
	if amount.Sign() <= 0 {
		return fixedpoint.Cost{}, errors.Wrap(errors.ErrInvalidInput, "amount must be positive")
	}

	scaled := new(big.Int).Quo(amount.BigInt(), fixedpoint.CostGap())
	scaled.Mul(scaled, strike.BigInt())
	scaled.Quo(scaled, currentPrice.BigInt())

	return fixedpoint.NewCost(scaled), nil
}
