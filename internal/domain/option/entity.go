package option

import (
	"time"

	"deltaoption/pkg/errors"
	"deltaoption/pkg/fixedpoint"
)

// Option represents a covered option written against the escrow pool.
// A record is never deleted; it terminates by flipping exactly one of
// Exercised/Canceled, which are mutually exclusive and single-assignment.
type Option struct {
	ID     int64  `db:"id" json:"id"`
	Symbol string `db:"symbol" json:"symbol"`
	Writer string `db:"writer" json:"writer"`
	// Buyer is empty until the option is bought, and set at most once.
	Buyer string `db:"buyer" json:"buyer,omitempty"`

	Strike  fixedpoint.Value `db:"strike" json:"strike"`
	Premium fixedpoint.Value `db:"premium" json:"premium"`
	Amount  fixedpoint.Value `db:"amount" json:"amount"`

	Expiry    time.Time `db:"expiry" json:"expiry"`
	Exercised bool      `db:"exercised" json:"exercised"`
	Canceled  bool      `db:"canceled" json:"canceled"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Status describes the option's lifecycle state
type Status string

const (
	StatusWritten   Status = "written"
	StatusBought    Status = "bought"
	StatusExercised Status = "exercised"
	StatusCanceled  Status = "canceled"
)

// String returns string representation
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusExercised || s == StatusCanceled
}

// Status derives the lifecycle state from the terminal flags and buyer
func (o *Option) Status() Status {
	switch {
	case o.Exercised:
		return StatusExercised
	case o.Canceled:
		return StatusCanceled
	case o.Sold():
		return StatusBought
	default:
		return StatusWritten
	}
}

// Sold reports whether a buyer has been set
func (o *Option) Sold() bool {
	return o.Buyer != ""
}

// IsTerminal reports whether the option reached a terminal state
func (o *Option) IsTerminal() bool {
	return o.Exercised || o.Canceled
}

// ExpiredAt reports whether the option is at or past expiry.
// Exercise requires strictly before expiry; reclamation requires this.
func (o *Option) ExpiredAt(now time.Time) bool {
	return !now.Before(o.Expiry)
}

// CanBuy checks the buy preconditions: unsold and non-terminal
func (o *Option) CanBuy() error {
	if o.IsTerminal() {
		return errors.ErrAlreadyTerminal
	}
	if o.Sold() {
		return errors.ErrAlreadyBought
	}
	return nil
}

// CanCancel checks the cancel preconditions: writer-only, unsold, non-terminal
func (o *Option) CanCancel(caller string) error {
	if caller != o.Writer {
		return errors.ErrNotWriter
	}
	if o.IsTerminal() {
		return errors.ErrAlreadyTerminal
	}
	if o.Sold() {
		return errors.ErrAlreadyBought
	}
	return nil
}

// CanExercise checks the exercise preconditions: buyer-only, non-terminal,
// strictly before expiry
func (o *Option) CanExercise(caller string, now time.Time) error {
	if !o.Sold() || caller != o.Buyer {
		return errors.ErrNotBuyer
	}
	if o.IsTerminal() {
		return errors.ErrAlreadyTerminal
	}
	if o.ExpiredAt(now) {
		return errors.ErrOptionExpired
	}
	return nil
}

// CanReclaim checks the expired-collateral reclamation preconditions:
// writer-only, never exercised or canceled, at or past expiry
func (o *Option) CanReclaim(caller string, now time.Time) error {
	if caller != o.Writer {
		return errors.ErrNotWriter
	}
	if o.IsTerminal() {
		return errors.ErrAlreadyTerminal
	}
	if !o.ExpiredAt(now) {
		return errors.ErrOptionNotExpired
	}
	return nil
}
