package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
)

func TestExerciseCost(t *testing.T) {
	tests := []struct {
		name   string
		strike fixedpoint.Value
		price  fixedpoint.Value
		amount fixedpoint.Value
		want   int64
	}{
		{
			name:   "strike below price",
			strike: fixedpoint.Whole(1700),
			price:  fixedpoint.Whole(1800),
			amount: fixedpoint.Whole(1),
			want:   94444444,
		},
		{
			name:   "strike equals price",
			strike: fixedpoint.Whole(1700),
			price:  fixedpoint.Whole(1700),
			amount: fixedpoint.Whole(1),
			want:   100000000,
		},
		{
			name:   "strike above price",
			strike: fixedpoint.Whole(1800),
			price:  fixedpoint.Whole(1700),
			amount: fixedpoint.Whole(1),
			want:   105882352,
		},
		{
			name:   "double amount doubles cost",
			strike: fixedpoint.Whole(1700),
			price:  fixedpoint.Whole(1700),
			amount: fixedpoint.Whole(2),
			want:   200000000,
		},
		{
			name:   "fractional amount",
			strike: fixedpoint.Whole(1700),
			price:  fixedpoint.Whole(1700),
			amount: fixedpoint.MustParse("500000000000000000"), // 0.5
			want:   50000000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := ExerciseCost(tt.strike, tt.price, tt.amount)
			require.NoError(t, err)
			assert.True(t, fixedpoint.CostFromInt64(tt.want).Equal(cost),
				"expected %d, got %s", tt.want, cost)
		})
	}
}

func TestExerciseCostScaleInvariance(t *testing.T) {
	base := fixedpoint.Whole(1)
	strike := fixedpoint.Whole(1700)
	price := fixedpoint.Whole(1800)

	want, err := ExerciseCost(strike, price, base)
	require.NoError(t, err)

	for _, factor := range []int64{2, 3, 7, 1000, 999983} {
		f := big.NewInt(factor)
		scaledStrike := fixedpoint.New(new(big.Int).Mul(strike.BigInt(), f))
		scaledPrice := fixedpoint.New(new(big.Int).Mul(price.BigInt(), f))

		got, err := ExerciseCost(scaledStrike, scaledPrice, base)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "factor %d: expected %s, got %s", factor, want, got)
	}
}

func TestExerciseCostTruncates(t *testing.T) {
	// 1 * 1700/1800 = 0.944444... -> the quote floors, never rounds up.
	cost, err := ExerciseCost(fixedpoint.Whole(1700), fixedpoint.Whole(1800), fixedpoint.Whole(1))
	require.NoError(t, err)

	exact := new(big.Rat).SetFrac(big.NewInt(1700*100000000), big.NewInt(1800))
	quoted := new(big.Rat).SetInt(cost.BigInt())
	assert.True(t, quoted.Cmp(exact) < 0, "quoted cost must stay below the exact rational value")
}

func TestExerciseCostRejectsZeroPrice(t *testing.T) {
	_, err := ExerciseCost(fixedpoint.Whole(1700), fixedpoint.Value{}, fixedpoint.Whole(1))
	assert.ErrorIs(t, err, errors.ErrZeroPrice)

	_, err = ExerciseCost(fixedpoint.Whole(1700), fixedpoint.FromInt64(-1), fixedpoint.Whole(1))
	assert.ErrorIs(t, err, errors.ErrZeroPrice)
}

func TestExerciseCostRejectsInvalidInputs(t *testing.T) {
	_, err := ExerciseCost(fixedpoint.Value{}, fixedpoint.Whole(1800), fixedpoint.Whole(1))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = ExerciseCost(fixedpoint.Whole(1700), fixedpoint.Whole(1800), fixedpoint.Value{})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
