package fixedpoint

import (
	"database/sql/driver"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Fixed-point scales used across the ledger. Entry-point quantities
// (strike, premium, amount, attached value) carry 18 decimals; quoted
// exercise costs carry 8, matching price-feed precision.
const (
	Decimals     = 18
	CostDecimals = 8
)

var (
	unit     = pow10(Decimals)                // 10^18
	costUnit = pow10(CostDecimals)            // 10^8
	costGap  = pow10(Decimals - CostDecimals) // 10^10
)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Value is an integer amount at 18-decimal fixed-point scale.
// The zero Value is zero.
type Value struct {
	i *big.Int
}

// New wraps a raw 18-decimal integer. The input is copied.
func New(i *big.Int) Value {
	if i == nil {
		return Value{}
	}
	return Value{i: new(big.Int).Set(i)}
}

// FromInt64 builds a Value from a raw 18-decimal integer.
func FromInt64(i int64) Value {
	return Value{i: big.NewInt(i)}
}

// Whole builds a Value representing n whole units (n * 10^18).
func Whole(n int64) Value {
	return Value{i: new(big.Int).Mul(big.NewInt(n), unit)}
}

// Parse reads a raw 18-decimal integer string.
func Parse(s string) (Value, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, fmt.Errorf("fixedpoint: invalid integer %q", s)
	}
	return Value{i: i}, nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromDecimal converts a human-decimal quantity to 18-decimal scale,
// truncating any precision beyond 18 places.
func FromDecimal(d decimal.Decimal) Value {
	return Value{i: d.Mul(decimal.New(1, Decimals)).Truncate(0).BigInt()}
}

func (v Value) raw() *big.Int {
	if v.i == nil {
		return big.NewInt(0)
	}
	return v.i
}

// BigInt returns a copy of the raw 18-decimal integer.
func (v Value) BigInt() *big.Int {
	return new(big.Int).Set(v.raw())
}

// Decimal returns the value in human-decimal units.
func (v Value) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(v.raw(), -Decimals)
}

func (v Value) Add(o Value) Value {
	return Value{i: new(big.Int).Add(v.raw(), o.raw())}
}

func (v Value) Sub(o Value) Value {
	return Value{i: new(big.Int).Sub(v.raw(), o.raw())}
}

func (v Value) Cmp(o Value) int {
	return v.raw().Cmp(o.raw())
}

func (v Value) Equal(o Value) bool {
	return v.Cmp(o) == 0
}

func (v Value) Sign() int {
	return v.raw().Sign()
}

func (v Value) IsZero() bool {
	return v.Sign() == 0
}

func (v Value) IsPositive() bool {
	return v.Sign() > 0
}

// String returns the raw 18-decimal integer representation.
func (v Value) String() string {
	return v.raw().String()
}

// MarshalJSON encodes the raw integer as a string; 18-decimal values do
// not fit JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Value implements driver.Valuer; stored as a numeric string.
func (v Value) Value() (driver.Value, error) {
	return v.String(), nil
}

// Scan implements sql.Scanner for numeric(78,0) columns.
func (v *Value) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		*v = Value{}
		return nil
	case []byte:
		parsed, err := Parse(string(s))
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case string:
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case int64:
		*v = FromInt64(s)
		return nil
	default:
		return fmt.Errorf("fixedpoint: cannot scan %T", src)
	}
}

// Cost is an integer amount at 8-decimal fixed-point scale, the output
// scale of exercise-cost quotes.
type Cost struct {
	i *big.Int
}

// NewCost wraps a raw 8-decimal integer. The input is copied.
func NewCost(i *big.Int) Cost {
	if i == nil {
		return Cost{}
	}
	return Cost{i: new(big.Int).Set(i)}
}

// CostFromInt64 builds a Cost from a raw 8-decimal integer.
func CostFromInt64(i int64) Cost {
	return Cost{i: big.NewInt(i)}
}

func (c Cost) raw() *big.Int {
	if c.i == nil {
		return big.NewInt(0)
	}
	return c.i
}

// BigInt returns a copy of the raw 8-decimal integer.
func (c Cost) BigInt() *big.Int {
	return new(big.Int).Set(c.raw())
}

// Decimal returns the cost in human-decimal units.
func (c Cost) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(c.raw(), -CostDecimals)
}

// AsValue rescales the cost to 18-decimal native units for settlement
// transfers and payment comparison.
func (c Cost) AsValue() Value {
	return Value{i: new(big.Int).Mul(c.raw(), costGap)}
}

func (c Cost) Equal(o Cost) bool {
	return c.raw().Cmp(o.raw()) == 0
}

func (c Cost) String() string {
	return c.raw().String()
}

// CostGap returns 10^(Decimals-CostDecimals), the rescaling factor
// between entry-point scale and quote scale.
func CostGap() *big.Int {
	return new(big.Int).Set(costGap)
}

// CostUnit returns 10^CostDecimals.
func CostUnit() *big.Int {
	return new(big.Int).Set(costUnit)
}
