package escrow

import (
	"time"

	"github.com/google/uuid"

	"deltaoption/pkg/fixedpoint"
)

// PoolAccount is the ledger-side party representing escrowed collateral,
// the analogue of the contract's native balance.
const PoolAccount = "pool"

// EntryType classifies native-asset movements in the escrow journal
type EntryType string

const (
	// EntryCollateralLock records the writer's collateral entering the pool
	EntryCollateralLock EntryType = "collateral_lock"

	// EntryCollateralRelease records collateral leaving the pool on
	// exercise, cancel, or expired reclamation
	EntryCollateralRelease EntryType = "collateral_release"

	// EntryPremium records the buyer paying the writer for the option
	EntryPremium EntryType = "premium"

	// EntrySettlement records the buyer paying the writer the exercise cost
	EntrySettlement EntryType = "settlement"
)

// String returns string representation
func (t EntryType) String() string {
	return string(t)
}

// Entry is one append-only journal record. Collateral for an option is
// locked by exactly one lock entry and released by exactly one release
// entry; the pool never retains value for a terminated option.
type Entry struct {
	ID          uuid.UUID        `db:"id"`
	Symbol      string           `db:"symbol"`
	OptionID    int64            `db:"option_id"`
	Type        EntryType        `db:"entry_type"`
	FromAccount string           `db:"from_account"`
	ToAccount   string           `db:"to_account"`
	Amount      fixedpoint.Value `db:"amount"`
	CreatedAt   time.Time        `db:"created_at"`
}

func newEntry(symbol string, optionID int64, typ EntryType, from, to string, amount fixedpoint.Value) *Entry {
	return &Entry{
		ID:          uuid.New(),
		Symbol:      symbol,
		OptionID:    optionID,
		Type:        typ,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewCollateralLock journals the writer's collateral entering the pool
func NewCollateralLock(symbol string, optionID int64, writer string, amount fixedpoint.Value) *Entry {
	return newEntry(symbol, optionID, EntryCollateralLock, writer, PoolAccount, amount)
}

// NewCollateralRelease journals collateral leaving the pool to the recipient
func NewCollateralRelease(symbol string, optionID int64, recipient string, amount fixedpoint.Value) *Entry {
	return newEntry(symbol, optionID, EntryCollateralRelease, PoolAccount, recipient, amount)
}

// NewPremium journals the buyer paying the writer the option premium
func NewPremium(symbol string, optionID int64, buyer, writer string, premium fixedpoint.Value) *Entry {
	return newEntry(symbol, optionID, EntryPremium, buyer, writer, premium)
}

// NewSettlement journals the buyer paying the writer the exercise cost
func NewSettlement(symbol string, optionID int64, buyer, writer string, cost fixedpoint.Value) *Entry {
	return newEntry(symbol, optionID, EntrySettlement, buyer, writer, cost)
}

// PoolDelta returns the entry's effect on the pool balance: positive for
// inflows, negative for outflows, zero for transfers between parties.
func (e *Entry) PoolDelta() fixedpoint.Value {
	switch {
	case e.ToAccount == PoolAccount:
		return e.Amount
	case e.FromAccount == PoolAccount:
		return fixedpoint.Value{}.Sub(e.Amount)
	default:
		return fixedpoint.Value{}
	}
}

// NetPoolBalance sums the pool deltas of a set of journal entries.
// Across a single option's full lifecycle it must come out to zero.
func NetPoolBalance(entries []*Entry) fixedpoint.Value {
	var net fixedpoint.Value
	for _, e := range entries {
		net = net.Add(e.PoolDelta())
	}
	return net
}
