// Command seed loads a small demo data set through the domain services so
// every stored total is produced by the calculators.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/app"
	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/claims"
	"github.com/fleetdesk/fleetdesk/internal/invoice"
	"github.com/fleetdesk/fleetdesk/internal/ledger"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	ctx := context.Background()

	pool, err := db.New(ctx, cfg.PGDSN, 2)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	claimsService := claims.NewService(claims.NewRepository(pool), claims.NewPricer(cfg.VATRate), nil, logger)
	invoiceService := invoice.NewService(invoice.NewRepository(pool), invoice.NewCalculator(cfg.VATRate), nil, logger)
	ledgerService := ledger.NewService(ledger.NewRepository(pool), nil, cfg.LedgerDefaultOwner, logger)

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"claims", func(ctx context.Context) error { return seedClaims(ctx, claimsService, invoiceService) }},
		{"transactions", func(ctx context.Context) error { return seedTransactions(ctx, ledgerService) }},
	}
	for _, step := range steps {
		logger.Info("seeding", slog.String("step", step.name))
		if err := step.run(ctx); err != nil {
			logger.Error("seed failed", slog.String("step", step.name), slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("seed complete")
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedClaims(ctx context.Context, cs *claims.Service, is *invoice.Service) error {
	claim, err := cs.CreateClaim(ctx, claims.CreateInput{
		Reference:  "CLM-DEMO-001",
		ClientName: "Jordan Example",
		VehicleReg: "ab12 cde",
		Charges: claims.Charges{
			Hire: charges.Enabled(charges.HirePeriod{
				StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 3),
				DayRate: 340, DeliveryCharge: 50, CollectionCharge: 50, InsurancePerDay: 10,
			}),
			Storage:  charges.Enabled(charges.StoragePeriod{StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 6), CostPerDay: 10}),
			Recovery: charges.Enabled(charges.RecoveryCharge{Amount: 180, IncludeVAT: true}),
		},
	})
	if errors.Is(err, claims.ErrDuplicateReference) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := cs.AddProgress(ctx, claim.ID, claims.ProgressInput{Date: day(2024, 1, 2), Status: "vehicle recovered", Author: "seed"}); err != nil {
		return fmt.Errorf("progress: %w", err)
	}

	_, err = is.CreateInvoice(ctx, invoice.CreateInput{
		ClaimID: &claim.ID,
		Date:    day(2024, 1, 20),
		Input: invoice.Input{
			LineItems: []invoice.LineItem{
				{Name: "Front bumper", Quantity: 1, UnitPrice: 60, IncludeVAT: true},
				{Name: "Headlamp unit", Quantity: 2, UnitPrice: 20},
			},
			LaborHours:      3,
			LaborRate:       40,
			LaborVAT:        true,
			MaterialsAmount: 30,
			PaidAmount:      100,
		},
	})
	return err
}

func seedTransactions(ctx context.Context, ls *ledger.Service) error {
	inputs := []ledger.CreateInput{
		{Type: ledger.TypeIncome, Amount: 1000, Date: day(2024, 1, 5), Category: "Hire income", AccountTo: "Bank", OwnerName: "Alex Owner"},
		{Type: ledger.TypeExpense, Amount: 1200, Date: day(2024, 1, 9), Category: "Repairs", AccountFrom: "Bank", OwnerName: "Alex Owner", Description: "Gearbox"},
		{Type: ledger.TypeExpense, Amount: 110, Date: day(2024, 1, 12), Category: "Insurance", AccountFrom: "Bank"},
	}
	for _, in := range inputs {
		if _, err := ls.RecordTransaction(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
