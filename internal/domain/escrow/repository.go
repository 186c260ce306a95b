package escrow

import (
	"context"

	"deltaoption/pkg/fixedpoint"
)

// Repository defines the interface for the append-only escrow journal
type Repository interface {
	Record(ctx context.Context, entry *Entry) error
	ListByOption(ctx context.Context, symbol string, optionID int64) ([]*Entry, error)

	// LockedTotal returns the pool's current balance: the sum of all lock
	// entries minus all release entries
	LockedTotal(ctx context.Context) (fixedpoint.Value, error)
}
