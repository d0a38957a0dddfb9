package claims

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/payment"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/progress"
)

// Repository defines claim data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetClaim(ctx context.Context, id uuid.UUID) (Claim, error)
	ListClaims(ctx context.Context) ([]Claim, error)
	ListProgress(ctx context.Context, id uuid.UUID) ([]progress.Entry, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	GetClaimForUpdate(ctx context.Context, id uuid.UUID) (Claim, error)
	InsertClaim(ctx context.Context, c Claim) error
	UpdateClaim(ctx context.Context, c Claim) error
	AppendProgress(ctx context.Context, claimID uuid.UUID, e progress.Entry) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	q db.Querier
}

// NewRepository returns a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{q: tx})
	})
}

const claimColumns = `id, reference, client_name, vehicle_reg, status,
	hire, storage, recovery, paid_amount,
	hire_total, storage_total, recovery_total, total, remaining_amount, payment_status,
	created_at, updated_at`

func scanClaim(row pgx.Row) (Claim, error) {
	var c Claim
	var status string
	err := row.Scan(
		&c.ID, &c.Reference, &c.ClientName, &c.VehicleReg, &c.Status,
		&c.Hire, &c.Storage, &c.Recovery, &c.PaidAmount,
		&c.HireTotal, &c.StorageTotal, &c.RecoveryTotal, &c.Total, &c.RemainingAmount, &status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Claim{}, ErrClaimNotFound
	}
	if err != nil {
		return Claim{}, err
	}
	c.PaymentStatus = payment.Status(status)
	return c, nil
}

func loadClaim(ctx context.Context, q db.Querier, id uuid.UUID, lock bool) (Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	c, err := scanClaim(q.QueryRow(ctx, query, id))
	if err != nil {
		return Claim{}, err
	}
	entries, err := progress.NewRepository(q).List(ctx, id)
	if err != nil {
		return Claim{}, err
	}
	c.Progress = progress.FromEntries(entries)
	return c, nil
}

func (r *pgRepository) GetClaim(ctx context.Context, id uuid.UUID) (Claim, error) {
	return loadClaim(ctx, r.pool, id, false)
}

// ListClaims returns every claim without its progress history.
func (r *pgRepository) ListClaims(ctx context.Context) ([]Claim, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepository) ListProgress(ctx context.Context, id uuid.UUID) ([]progress.Entry, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM claims WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrClaimNotFound
	}
	return progress.NewRepository(r.pool).List(ctx, id)
}

func (tx *pgTxRepository) GetClaimForUpdate(ctx context.Context, id uuid.UUID) (Claim, error) {
	return loadClaim(ctx, tx.q, id, true)
}

func (tx *pgTxRepository) InsertClaim(ctx context.Context, c Claim) error {
	_, err := tx.q.Exec(ctx, `
		INSERT INTO claims (`+claimColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.Reference, c.ClientName, c.VehicleReg, c.Status,
		c.Hire, c.Storage, c.Recovery, c.PaidAmount,
		c.HireTotal, c.StorageTotal, c.RecoveryTotal, c.Total, c.RemainingAmount, string(c.PaymentStatus),
		c.CreatedAt, c.UpdatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateReference
	}
	return err
}

func (tx *pgTxRepository) UpdateClaim(ctx context.Context, c Claim) error {
	tag, err := tx.q.Exec(ctx, `
		UPDATE claims SET
			hire = $2, storage = $3, recovery = $4, paid_amount = $5,
			hire_total = $6, storage_total = $7, recovery_total = $8, total = $9,
			remaining_amount = $10, payment_status = $11, updated_at = $12
		WHERE id = $1`,
		c.ID, c.Hire, c.Storage, c.Recovery, c.PaidAmount,
		c.HireTotal, c.StorageTotal, c.RecoveryTotal, c.Total,
		c.RemainingAmount, string(c.PaymentStatus), c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func (tx *pgTxRepository) AppendProgress(ctx context.Context, claimID uuid.UUID, e progress.Entry) error {
	return progress.NewRepository(tx.q).Append(ctx, claimID, e)
}

func (tx *pgTxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	_, err := tx.q.Exec(ctx, `UPDATE claims SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	return err
}
