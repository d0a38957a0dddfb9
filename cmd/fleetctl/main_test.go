package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/invoice"
	"github.com/fleetdesk/fleetdesk/internal/ledger"
	"github.com/fleetdesk/fleetdesk/internal/payment"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvoiceCommand(t *testing.T) {
	input := `{"line_items":[{"name":"Panel","quantity":2,"unit_price":50,"include_vat":true}],"labor_hours":1,"labor_rate":40,"paid_amount":20}`
	out, err := run(t, input, "invoice")
	require.NoError(t, err)

	var totals invoice.Totals
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	assert.Equal(t, 140.0, totals.Subtotal)
	assert.Equal(t, 20.0, totals.VATAmount)
	assert.Equal(t, 160.0, totals.Total)
	assert.Equal(t, 140.0, totals.RemainingAmount)
	assert.Equal(t, payment.StatusPartiallyPaid, totals.PaymentStatus)
}

func TestInvoiceCommandStrictAndPreview(t *testing.T) {
	input := `{"labor_hours":-1,"labor_rate":40}`
	_, err := run(t, input, "invoice")
	require.ErrorIs(t, err, invoice.ErrInvalidInput)

	out, err := run(t, input, "invoice", "--preview")
	require.NoError(t, err)
	var totals invoice.Totals
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	assert.Zero(t, totals.Total)
}

func TestHireCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hire.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"start_date":"2024-01-01T00:00:00Z","end_date":"2024-01-03T00:00:00Z","day_rate":340,"delivery_charge":50,"collection_charge":50,"insurance_per_day":10}`), 0o600))

	out, err := run(t, "", "hire", path)
	require.NoError(t, err)
	var priced charges.HirePeriod
	require.NoError(t, json.Unmarshal([]byte(out), &priced))
	assert.Equal(t, 3, priced.DaysOfHire)
	assert.Equal(t, 1150.0, priced.TotalCost)
}

func TestHireCommandRejectsInvertedRange(t *testing.T) {
	_, err := run(t, `{"start_date":"2024-01-05T00:00:00Z","end_date":"2024-01-03T00:00:00Z","day_rate":10}`, "hire")
	var rangeErr *charges.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
}

func TestStorageCommand(t *testing.T) {
	out, err := run(t, `{"start_date":"2024-01-01T00:00:00Z","end_date":"2024-01-06T00:00:00Z","cost_per_day":10}`, "storage", "-")
	require.NoError(t, err)
	var priced charges.StoragePeriod
	require.NoError(t, json.Unmarshal([]byte(out), &priced))
	assert.Equal(t, 5, priced.Days)
	assert.Equal(t, 50.0, priced.TotalCost)
}

func TestLedgerCommand(t *testing.T) {
	input := `[
		{"type":"income","amount":1000,"date":"2024-01-10T00:00:00Z","category":"Hire","vehicle_owner":{"name":"A"}},
		{"type":"expense","amount":1200,"date":"2024-01-11T00:00:00Z","category":"Repairs","vehicle_owner":{"name":"A"}},
		{"type":"expense","amount":50,"date":"2024-01-12T00:00:00Z","category":"Fuel"}
	]`
	out, err := run(t, input, "ledger", "--owner", "A")
	require.NoError(t, err)
	var summary ledger.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, -200.0, summary.PerOwnerNet["A"])
	assert.Equal(t, 200.0, summary.TotalOwing)

	out, err = run(t, input, "ledger", "--default-owner", "Fleet")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, -50.0, summary.PerOwnerNet["Fleet"])

	_, err = run(t, input, "ledger", "--from", "10/01/2024")
	require.Error(t, err)
}

func TestUnknownFieldsRejected(t *testing.T) {
	_, err := run(t, `{"labour_hours":1}`, "invoice")
	require.ErrorContains(t, err, "decode input")
}
