package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"deltaoption/internal/domain/escrow"
	"deltaoption/pkg/fixedpoint"
)

// Compile-time check
var _ escrow.Repository = (*EscrowRepository)(nil)

// EscrowRepository implements the append-only escrow journal using sqlx
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository creates a new escrow journal repository
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Record appends a journal entry
func (r *EscrowRepository) Record(ctx context.Context, entry *escrow.Entry) error {
	query := `
		INSERT INTO escrow_entries (
			id, symbol, option_id, entry_type,
			from_account, to_account, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		entry.ID, entry.Symbol, entry.OptionID, entry.Type,
		entry.FromAccount, entry.ToAccount, entry.Amount, entry.CreatedAt,
	)

	return err
}

// ListByOption retrieves the journal for one option, oldest first
func (r *EscrowRepository) ListByOption(ctx context.Context, symbol string, optionID int64) ([]*escrow.Entry, error) {
	var entries []*escrow.Entry

	query := `
		SELECT * FROM escrow_entries
		WHERE symbol = $1 AND option_id = $2
		ORDER BY created_at ASC`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &entries, query, symbol, optionID); err != nil {
		return nil, err
	}

	return entries, nil
}

// LockedTotal returns the pool balance: locks minus releases
func (r *EscrowRepository) LockedTotal(ctx context.Context) (fixedpoint.Value, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN to_account = $1 THEN amount
				WHEN from_account = $1 THEN -amount
				ELSE 0
			END
		), 0)::numeric(78,0)
		FROM escrow_entries`

	var raw sql.NullString
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &raw, query, escrow.PoolAccount); err != nil {
		return fixedpoint.Value{}, err
	}
	if !raw.Valid {
		return fixedpoint.Value{}, nil
	}

	return fixedpoint.Parse(raw.String)
}
