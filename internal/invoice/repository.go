package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetdesk/fleetdesk/internal/payment"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
)

// Repository defines invoice data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error)
	ListInvoices(ctx context.Context, req ListRequest) ([]Invoice, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	InsertInvoice(ctx context.Context, inv Invoice) error
	UpdateInvoice(ctx context.Context, inv Invoice) error
	GenerateInvoiceNumber(ctx context.Context) (string, error)
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

const invoiceColumns = `id, number, claim_id, invoice_date, line_items,
	labor_hours, labor_rate, labor_vat, materials_amount, materials_vat, paid_amount,
	parts_total, labor_cost, materials_total, subtotal, vat_amount, total,
	remaining_amount, payment_status, overpaid, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var status string
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.ClaimID, &inv.Date, &inv.LineItems,
		&inv.LaborHours, &inv.LaborRate, &inv.LaborVAT, &inv.MaterialsAmount, &inv.MaterialsVAT, &inv.PaidAmount,
		&inv.PartsTotal, &inv.LaborCost, &inv.MaterialsTotal, &inv.Subtotal, &inv.VATAmount, &inv.Total,
		&inv.RemainingAmount, &status, &inv.Overpaid, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return Invoice{}, err
	}
	inv.PaymentStatus = payment.Status(status)
	return inv, nil
}

func (r *pgRepository) GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *pgRepository) ListInvoices(ctx context.Context, req ListRequest) ([]Invoice, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if req.Status != "" {
		add("payment_status = $%d", string(req.Status))
	}
	if req.ClaimID != nil {
		add("claim_id = $%d", *req.ClaimID)
	}
	if !req.FromDate.IsZero() {
		add("invoice_date >= $%d", req.FromDate)
	}
	if !req.ToDate.IsZero() {
		add("invoice_date <= $%d", req.ToDate)
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY invoice_date DESC, number DESC"
	if req.Limit > 0 {
		args = append(args, req.Limit, req.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (tx *pgTxRepository) InsertInvoice(ctx context.Context, inv Invoice) error {
	_, err := tx.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		inv.ID, inv.Number, inv.ClaimID, inv.Date, lineItemsOrEmpty(inv.LineItems),
		inv.LaborHours, inv.LaborRate, inv.LaborVAT, inv.MaterialsAmount, inv.MaterialsVAT, inv.PaidAmount,
		inv.PartsTotal, inv.LaborCost, inv.MaterialsTotal, inv.Subtotal, inv.VATAmount, inv.Total,
		inv.RemainingAmount, string(inv.PaymentStatus), inv.Overpaid, inv.CreatedAt, inv.UpdatedAt,
	)
	return err
}

// UpdateInvoice overwrites every stored field. Concurrent writers race and the
// last write wins; the next read recomputes from whatever was stored.
func (tx *pgTxRepository) UpdateInvoice(ctx context.Context, inv Invoice) error {
	tag, err := tx.q.Exec(ctx, `
		UPDATE invoices SET
			line_items = $2, labor_hours = $3, labor_rate = $4, labor_vat = $5,
			materials_amount = $6, materials_vat = $7, paid_amount = $8,
			parts_total = $9, labor_cost = $10, materials_total = $11, subtotal = $12,
			vat_amount = $13, total = $14, remaining_amount = $15, payment_status = $16,
			overpaid = $17, updated_at = $18
		WHERE id = $1`,
		inv.ID, lineItemsOrEmpty(inv.LineItems), inv.LaborHours, inv.LaborRate, inv.LaborVAT,
		inv.MaterialsAmount, inv.MaterialsVAT, inv.PaidAmount,
		inv.PartsTotal, inv.LaborCost, inv.MaterialsTotal, inv.Subtotal,
		inv.VATAmount, inv.Total, inv.RemainingAmount, string(inv.PaymentStatus),
		inv.Overpaid, inv.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (tx *pgTxRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := tx.q.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%05d", time.Now().Format("200601"), seq), nil
}

func lineItemsOrEmpty(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return items
}
