package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"deltaoption/internal/domain/option"
	"deltaoption/pkg/errors"
)

// Compile-time check
var _ option.Repository = (*OptionRepository)(nil)

// OptionRepository implements option.Repository using sqlx.
//
// Lifecycle transitions are guarded UPDATEs whose WHERE clause restates
// the expected state; a concurrent transition makes the update match
// zero rows and the loser gets a lifecycle error instead of a double
// assignment. This stands in for the chain's transaction serialization.
type OptionRepository struct {
	db *sqlx.DB
}

// NewOptionRepository creates a new option repository
func NewOptionRepository(db *sqlx.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

// Create inserts a new option and assigns its monotonic ID
func (r *OptionRepository) Create(ctx context.Context, o *option.Option) error {
	query := `
		INSERT INTO options (
			symbol, writer, buyer,
			strike, premium, amount,
			expiry, exercised, canceled,
			created_at, updated_at
		) VALUES ($1, $2, '', $3, $4, $5, $6, false, false, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	row := ext(ctx, r.db).QueryRowxContext(ctx, query,
		o.Symbol, o.Writer,
		o.Strike, o.Premium, o.Amount,
		o.Expiry,
	)

	return row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// GetBySymbolID retrieves an option by its ledger key
func (r *OptionRepository) GetBySymbolID(ctx context.Context, symbol string, id int64) (*option.Option, error) {
	var o option.Option

	query := `SELECT * FROM options WHERE symbol = $1 AND id = $2`

	err := sqlx.GetContext(ctx, ext(ctx, r.db), &o, query, symbol, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "option %s/%d", symbol, id)
	}
	if err != nil {
		return nil, err
	}

	return &o, nil
}

// ListBySymbol retrieves all options written for a symbol, oldest first
func (r *OptionRepository) ListBySymbol(ctx context.Context, symbol string) ([]*option.Option, error) {
	var options []*option.Option

	query := `SELECT * FROM options WHERE symbol = $1 ORDER BY id ASC`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &options, query, symbol); err != nil {
		return nil, err
	}

	return options, nil
}

// ListExpiredOpen retrieves options past expiry that are neither
// exercised nor canceled, so their collateral is still in the pool
func (r *OptionRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]*option.Option, error) {
	var options []*option.Option

	query := `
		SELECT * FROM options
		WHERE expiry <= $1 AND NOT exercised AND NOT canceled
		ORDER BY expiry ASC`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &options, query, now); err != nil {
		return nil, err
	}

	return options, nil
}

// SetBuyer assigns the buyer; fails unless unsold and non-terminal
func (r *OptionRepository) SetBuyer(ctx context.Context, symbol string, id int64, buyer string) error {
	query := `
		UPDATE options SET buyer = $3, updated_at = NOW()
		WHERE symbol = $1 AND id = $2
			AND buyer = '' AND NOT exercised AND NOT canceled`

	res, err := ext(ctx, r.db).ExecContext(ctx, query, symbol, id, buyer)
	if err != nil {
		return err
	}

	return r.checkTransition(ctx, res, symbol, id, func(o *option.Option) error {
		return o.CanBuy()
	})
}

// MarkExercised flips the exercised flag; fails if already terminal
func (r *OptionRepository) MarkExercised(ctx context.Context, symbol string, id int64) error {
	query := `
		UPDATE options SET exercised = true, updated_at = NOW()
		WHERE symbol = $1 AND id = $2
			AND NOT exercised AND NOT canceled`

	res, err := ext(ctx, r.db).ExecContext(ctx, query, symbol, id)
	if err != nil {
		return err
	}

	return r.checkTransition(ctx, res, symbol, id, func(o *option.Option) error {
		return errors.ErrAlreadyTerminal
	})
}

// MarkCanceled flips the canceled flag; fails if already terminal, and
// with requireUnsold also once a buyer is set
func (r *OptionRepository) MarkCanceled(ctx context.Context, symbol string, id int64, requireUnsold bool) error {
	query := `
		UPDATE options SET canceled = true, updated_at = NOW()
		WHERE symbol = $1 AND id = $2
			AND NOT exercised AND NOT canceled`
	if requireUnsold {
		query += ` AND buyer = ''`
	}

	res, err := ext(ctx, r.db).ExecContext(ctx, query, symbol, id)
	if err != nil {
		return err
	}

	return r.checkTransition(ctx, res, symbol, id, func(o *option.Option) error {
		if requireUnsold && o.Sold() {
			return errors.ErrAlreadyBought
		}
		return errors.ErrAlreadyTerminal
	})
}

// checkTransition maps a zero-row guarded update to the lifecycle error
// the current record state implies
func (r *OptionRepository) checkTransition(ctx context.Context, res sql.Result, symbol string, id int64, stateErr func(*option.Option) error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	o, err := r.GetBySymbolID(ctx, symbol, id)
	if err != nil {
		return err
	}

	return stateErr(o)
}
