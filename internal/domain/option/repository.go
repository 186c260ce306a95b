package option

import (
	"context"
	"time"
)

// Repository defines the interface for option ledger data access.
// Transition methods are guarded compare-and-set updates: they fail with
// a lifecycle error when the record is no longer in the expected state,
// so a lost race can never double-assign a buyer or terminal flag.
type Repository interface {
	// Create inserts a new option and assigns its monotonic ID
	Create(ctx context.Context, o *Option) error

	GetBySymbolID(ctx context.Context, symbol string, id int64) (*Option, error)
	ListBySymbol(ctx context.Context, symbol string) ([]*Option, error)

	// ListExpiredOpen returns options past expiry whose collateral was
	// neither exercised nor reclaimed
	ListExpiredOpen(ctx context.Context, now time.Time) ([]*Option, error)

	// SetBuyer assigns the buyer; fails unless unsold and non-terminal
	SetBuyer(ctx context.Context, symbol string, id int64, buyer string) error

	// MarkExercised flips the exercised flag; fails if already terminal
	MarkExercised(ctx context.Context, symbol string, id int64) error

	// MarkCanceled flips the canceled flag; fails if already terminal.
	// With requireUnsold it additionally fails once a buyer is set
	// (pre-purchase cancel); without it the buyer may be set (post-expiry
	// reclamation).
	MarkCanceled(ctx context.Context, symbol string, id int64, requireUnsold bool) error
}
