package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryLedgerRepo struct {
	txs []Transaction
}

func (r *memoryLedgerRepo) InsertTransaction(ctx context.Context, tx Transaction) error {
	r.txs = append(r.txs, tx)
	return nil
}

func (r *memoryLedgerRepo) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	for i, tx := range r.txs {
		if tx.ID == id {
			r.txs = append(r.txs[:i], r.txs[i+1:]...)
			return nil
		}
	}
	return ErrTransactionNotFound
}

func (r *memoryLedgerRepo) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	for _, tx := range r.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, ErrTransactionNotFound
}

func (r *memoryLedgerRepo) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return append([]Transaction(nil), r.txs...), nil
}

type recordingNotifier struct {
	topics []string
}

func (n *recordingNotifier) Publish(ctx context.Context, topic string) error {
	n.topics = append(n.topics, topic)
	return nil
}

func newLedgerService() (*Service, *memoryLedgerRepo, *recordingNotifier) {
	repo := &memoryLedgerRepo{}
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, defaultOwner, nil)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo, notifier
}

func TestServiceRecordTransaction(t *testing.T) {
	svc, repo, notifier := newLedgerService()
	ctx := context.Background()

	tx, err := svc.RecordTransaction(ctx, CreateInput{
		Type:      TypeExpense,
		Amount:    12.345,
		Date:      day(2024, 1, 20, 10),
		Category:  " repairs ",
		OwnerName: defaultOwner,
	})
	require.NoError(t, err)
	require.Equal(t, 12.35, tx.Amount)
	require.Equal(t, "repairs", tx.Category)
	require.NotNil(t, tx.VehicleOwner)
	require.True(t, tx.VehicleOwner.IsDefault)
	require.Len(t, repo.txs, 1)
	require.Equal(t, []string{Topic}, notifier.topics)

	tx, err = svc.RecordTransaction(ctx, CreateInput{
		Type:     TypeIncome,
		Amount:   10,
		Date:     day(2024, 1, 21, 10),
		Category: "hire",
	})
	require.NoError(t, err)
	require.Nil(t, tx.VehicleOwner)
}

func TestServiceRecordTransactionValidation(t *testing.T) {
	svc, repo, _ := newLedgerService()
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, CreateInput{Type: "gift", Amount: 1, Date: day(2024, 1, 1, 0), Category: "x"})
	require.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = svc.RecordTransaction(ctx, CreateInput{Type: TypeIncome, Amount: -1, Date: day(2024, 1, 1, 0), Category: "x"})
	require.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = svc.RecordTransaction(ctx, CreateInput{Type: TypeIncome, Amount: 1, Category: "x"})
	require.ErrorIs(t, err, ErrInvalidTransaction)

	require.Empty(t, repo.txs)
}

func TestServiceSummaryAndStatement(t *testing.T) {
	svc, _, _ := newLedgerService()
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Type: TypeIncome, Amount: 500, Date: day(2024, 1, 5, 9), Category: "hire", OwnerName: "A"},
		{Type: TypeExpense, Amount: 700, Date: day(2024, 1, 6, 9), Category: "repairs", OwnerName: "A"},
		{Type: TypeExpense, Amount: 80, Date: day(2024, 1, 7, 9), Category: "storage"},
		{Type: TypeExpense, Amount: 20, Date: day(2024, 2, 7, 9), Category: "storage"},
	} {
		_, err := svc.RecordTransaction(ctx, in)
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, FilterCriteria{})
	require.NoError(t, err)
	require.Equal(t, -200.0, summary.PerOwnerNet["A"])
	require.Equal(t, -100.0, summary.PerOwnerNet[defaultOwner])
	require.Equal(t, 300.0, summary.TotalOwing)

	summary, err = svc.Summary(ctx, FilterCriteria{Owner: SelectOwner(defaultOwner), To: day(2024, 1, 31, 0)})
	require.NoError(t, err)
	require.Equal(t, 80.0, summary.TotalOwing)

	stmt, err := svc.Statement(ctx, "A", day(2024, 1, 1, 0), day(2024, 1, 31, 0))
	require.NoError(t, err)
	require.Equal(t, "A", stmt.Owner)
	require.Len(t, stmt.Transactions, 2)
	require.Equal(t, 200.0, stmt.Summary.TotalOwing)
	require.Equal(t, svc.now(), stmt.GeneratedAt)
}

func TestServiceDeleteTransaction(t *testing.T) {
	svc, repo, notifier := newLedgerService()
	ctx := context.Background()

	tx, err := svc.RecordTransaction(ctx, CreateInput{Type: TypeIncome, Amount: 5, Date: day(2024, 1, 1, 0), Category: "x"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
	require.Empty(t, repo.txs)
	require.Len(t, notifier.topics, 2)

	require.ErrorIs(t, svc.DeleteTransaction(ctx, tx.ID), ErrTransactionNotFound)
}
