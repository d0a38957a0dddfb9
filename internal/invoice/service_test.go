package invoice

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/payment"
)

type memoryInvoiceRepo struct {
	invoices map[uuid.UUID]Invoice
	seq      int
}

type memoryInvoiceTx struct {
	repo *memoryInvoiceRepo
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: make(map[uuid.UUID]Invoice)}
}

func (r *memoryInvoiceRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryInvoiceTx{repo: r})
}

func (r *memoryInvoiceRepo) GetInvoice(ctx context.Context, id uuid.UUID) (Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (r *memoryInvoiceRepo) ListInvoices(ctx context.Context, req ListRequest) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if req.Status != "" && inv.PaymentStatus != req.Status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (tx *memoryInvoiceTx) InsertInvoice(ctx context.Context, inv Invoice) error {
	tx.repo.invoices[inv.ID] = inv
	return nil
}

func (tx *memoryInvoiceTx) UpdateInvoice(ctx context.Context, inv Invoice) error {
	if _, ok := tx.repo.invoices[inv.ID]; !ok {
		return ErrInvoiceNotFound
	}
	tx.repo.invoices[inv.ID] = inv
	return nil
}

func (tx *memoryInvoiceTx) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	tx.repo.seq++
	return fmt.Sprintf("INV-TEST-%05d", tx.repo.seq), nil
}

type countingNotifier struct {
	topics []string
}

func (n *countingNotifier) Publish(ctx context.Context, topic string) error {
	n.topics = append(n.topics, topic)
	return nil
}

func newTestService() (*Service, *memoryInvoiceRepo, *countingNotifier) {
	repo := newMemoryInvoiceRepo()
	notifier := &countingNotifier{}
	svc := NewService(repo, NewCalculator(0.20), notifier, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo, notifier
}

func TestServiceCreateInvoice(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInput{Input: sampleInput()})
	require.NoError(t, err)
	require.Equal(t, "INV-TEST-00001", inv.Number)
	require.Equal(t, 294.0, inv.Total)
	require.Equal(t, payment.StatusPartiallyPaid, inv.PaymentStatus)
	require.Equal(t, svc.now(), inv.Date)
	require.Contains(t, repo.invoices, inv.ID)
	require.Equal(t, []string{Topic}, notifier.topics)

	named, err := svc.CreateInvoice(ctx, CreateInput{Number: "INV-MANUAL", Input: Input{}})
	require.NoError(t, err)
	require.Equal(t, "INV-MANUAL", named.Number)
}

func TestServiceCreateInvoiceRejectsInvalid(t *testing.T) {
	svc, repo, notifier := newTestService()
	in := sampleInput()
	in.LaborHours = -1

	_, err := svc.CreateInvoice(context.Background(), CreateInput{Input: in})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Empty(t, repo.invoices)
	require.Empty(t, notifier.topics)
}

func TestServiceGetInvoiceReportsDrift(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInput{Input: sampleInput()})
	require.NoError(t, err)

	checked, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.False(t, checked.Drift)
	require.Nil(t, checked.Stored)

	tampered := repo.invoices[inv.ID]
	tampered.Total = 999
	tampered.PaymentStatus = payment.StatusPaid
	repo.invoices[inv.ID] = tampered

	checked, err = svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, checked.Drift)
	require.NotNil(t, checked.Stored)
	require.Equal(t, 999.0, checked.Stored.Total)
	require.Equal(t, 294.0, checked.Invoice.Total)
	require.Equal(t, payment.StatusPartiallyPaid, checked.Invoice.PaymentStatus)
}

func TestServiceGetInvoiceNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.GetInvoice(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestServiceRecordPayment(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInput{Input: sampleInput()})
	require.NoError(t, err)

	updated, err := svc.RecordPayment(ctx, inv.ID, 294)
	require.NoError(t, err)
	require.Equal(t, payment.StatusPaid, updated.PaymentStatus)
	require.Zero(t, updated.RemainingAmount)
	require.Equal(t, updated, repo.invoices[inv.ID])
	require.Len(t, notifier.topics, 2)

	_, err = svc.RecordPayment(ctx, inv.ID, -1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordPayment(ctx, uuid.New(), 10)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestServiceReconcile(t *testing.T) {
	svc, repo, notifier := newTestService()
	ctx := context.Background()

	clean, err := svc.CreateInvoice(ctx, CreateInput{Input: sampleInput()})
	require.NoError(t, err)
	bad, err := svc.CreateInvoice(ctx, CreateInput{Input: sampleInput()})
	require.NoError(t, err)
	notifier.topics = nil

	drifted := repo.invoices[bad.ID]
	drifted.VATAmount = 1
	repo.invoices[bad.ID] = drifted

	report, err := svc.Reconcile(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 2, report.Checked)
	require.Equal(t, []uuid.UUID{bad.ID}, report.Drifted)
	require.Zero(t, report.Repaired)
	require.Equal(t, 1.0, repo.invoices[bad.ID].VATAmount)
	require.Empty(t, notifier.topics)

	report, err = svc.Reconcile(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 1, report.Repaired)
	require.Equal(t, 44.0, repo.invoices[bad.ID].VATAmount)
	require.Equal(t, repo.invoices[clean.ID].Totals, repo.invoices[bad.ID].Totals)
	require.Equal(t, []string{Topic}, notifier.topics)

	report, err = svc.Reconcile(ctx, true)
	require.NoError(t, err)
	require.Empty(t, report.Drifted)
}
