package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines transaction data access. Listing always returns the
// full set; filtering happens in FilterCriteria.
type Repository interface {
	InsertTransaction(ctx context.Context, tx Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const transactionColumns = `id, type, amount, occurred_at, category, account_from, account_to,
	owner_name, owner_is_default, description, created_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		tx        Transaction
		kind      string
		ownerName *string
		isDefault bool
	)
	if err := row.Scan(&tx.ID, &kind, &tx.Amount, &tx.Date, &tx.Category, &tx.AccountFrom, &tx.AccountTo,
		&ownerName, &isDefault, &tx.Description, &tx.CreatedAt); err != nil {
		return Transaction{}, err
	}
	tx.Type = Type(kind)
	if ownerName != nil {
		tx.VehicleOwner = &Owner{Name: *ownerName, IsDefault: isDefault}
	}
	return tx, nil
}

func (r *pgRepository) InsertTransaction(ctx context.Context, tx Transaction) error {
	var (
		ownerName *string
		isDefault bool
	)
	if tx.VehicleOwner != nil {
		name := tx.VehicleOwner.Name
		ownerName = &name
		isDefault = tx.VehicleOwner.IsDefault
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tx.ID, string(tx.Type), tx.Amount, tx.Date, tx.Category, tx.AccountFrom, tx.AccountTo,
		ownerName, isDefault, tx.Description, tx.CreatedAt,
	)
	return err
}

func (r *pgRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *pgRepository) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	tx, err := scanTransaction(r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	}
	return tx, err
}

func (r *pgRepository) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY occurred_at, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
