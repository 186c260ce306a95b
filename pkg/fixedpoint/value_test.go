package fixedpoint

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"whole unit", "1000000000000000000", false},
		{"large value", "1700000000000000000000", false},
		{"zero", "0", false},
		{"negative", "-5", false},
		{"empty", "", true},
		{"not a number", "abc", true},
		{"decimal point", "1.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, v.String())
			}
		})
	}
}

func TestWhole(t *testing.T) {
	assert.Equal(t, "1000000000000000000", Whole(1).String())
	assert.Equal(t, "1700000000000000000000", Whole(1700).String())
	assert.True(t, Whole(0).IsZero())
}

func TestDecimalRoundTrip(t *testing.T) {
	v := MustParse("1234500000000000000") // 1.2345
	assert.Equal(t, "1.2345", v.Decimal().String())

	d := decimal.RequireFromString("0.5")
	assert.Equal(t, "500000000000000000", FromDecimal(d).String())

	// Precision beyond 18 places truncates.
	tiny := decimal.New(15, -19) // 1.5e-18
	assert.Equal(t, "1", FromDecimal(tiny).String())
}

func TestArithmetic(t *testing.T) {
	a := Whole(3)
	b := Whole(2)

	assert.True(t, a.Add(b).Equal(Whole(5)))
	assert.True(t, a.Sub(b).Equal(Whole(1)))
	assert.Equal(t, 1, a.Cmp(b))
	assert.True(t, a.IsPositive())
	assert.False(t, b.Sub(a).IsPositive())
}

func TestZeroValueIsSafe(t *testing.T) {
	var v Value
	assert.True(t, v.IsZero())
	assert.Equal(t, "0", v.String())
	assert.True(t, v.Add(Whole(1)).Equal(Whole(1)))
}

func TestJSON(t *testing.T) {
	v := Whole(1700)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `"1700000000000000000000"`, string(data))

	var back Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, v.Equal(back))
}

func TestScan(t *testing.T) {
	var v Value
	require.NoError(t, v.Scan([]byte("42000000000000000000")))
	assert.True(t, v.Equal(Whole(42)))

	require.NoError(t, v.Scan("1000000000000000000"))
	assert.True(t, v.Equal(Whole(1)))

	require.NoError(t, v.Scan(nil))
	assert.True(t, v.IsZero())

	assert.Error(t, v.Scan(3.14))
}

func TestCostAsValue(t *testing.T) {
	c := CostFromInt64(100000000) // 1.0 at 8-dec scale
	assert.True(t, c.AsValue().Equal(Whole(1)))
	assert.Equal(t, "1", c.Decimal().String())

	c = CostFromInt64(94444444)
	assert.Equal(t, "944444440000000000", c.AsValue().String())
	assert.Equal(t, "0.94444444", c.Decimal().String())
}
