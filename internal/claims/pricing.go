package claims

import (
	"fmt"

	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/money"
	"github.com/fleetdesk/fleetdesk/internal/payment"
)

// Pricer recomputes claim charges at a fixed VAT rate.
type Pricer struct {
	vatRate float64
}

// NewPricer returns a Pricer for vatRate.
func NewPricer(vatRate float64) Pricer {
	return Pricer{vatRate: vatRate}
}

// Price re-prices every enabled section and derives the claim totals. The
// returned Charges and Totals replace the inputs entirely.
func (p Pricer) Price(in Charges) (Charges, Totals, error) {
	if err := money.Finite("paid_amount", in.PaidAmount); err != nil {
		return in, Totals{}, err
	}
	if in.PaidAmount < 0 {
		return in, Totals{}, fmt.Errorf("paid_amount: %w", charges.ErrNegativeAmount)
	}

	hire, err := charges.Price(in.Hire, charges.PriceHire)
	if err != nil {
		return in, Totals{}, fmt.Errorf("hire: %w", err)
	}
	storage, err := charges.Price(in.Storage, charges.PriceStorage)
	if err != nil {
		return in, Totals{}, fmt.Errorf("storage: %w", err)
	}
	recovery, err := charges.Price(in.Recovery, func(r charges.RecoveryCharge) (charges.RecoveryCharge, error) {
		return charges.PriceRecovery(r, p.vatRate)
	})
	if err != nil {
		return in, Totals{}, fmt.Errorf("recovery: %w", err)
	}

	var t Totals
	if h, ok := hire.Get(); ok {
		t.HireTotal = h.TotalCost
	}
	if s, ok := storage.Get(); ok {
		t.StorageTotal = s.TotalCost
	}
	if r, ok := recovery.Get(); ok {
		t.RecoveryTotal = r.TotalCost
	}
	total := money.Dec(t.HireTotal).Add(money.Dec(t.StorageTotal)).Add(money.Dec(t.RecoveryTotal))
	paid := money.RoundDec(money.Dec(in.PaidAmount))
	t.Total = money.Float(total)
	t.RemainingAmount = money.Float(money.ClampDec(total.Sub(paid)))
	t.PaymentStatus = payment.Resolve(t.Total, paid.InexactFloat64())

	out := Charges{Hire: hire, Storage: storage, Recovery: recovery, PaidAmount: in.PaidAmount}
	return out, t, nil
}

// Recompute returns c with its charges re-priced and totals replaced.
func (p Pricer) Recompute(c Claim) (Claim, error) {
	priced, totals, err := p.Price(c.Charges)
	if err != nil {
		return c, err
	}
	c.Charges = priced
	c.Totals = totals
	return c, nil
}

// SameTotals reports whether two sets of claim totals agree to the cent.
func SameTotals(a, b Totals) bool {
	eq := func(x, y float64) bool { return money.Round2(x) == money.Round2(y) }
	return eq(a.HireTotal, b.HireTotal) &&
		eq(a.StorageTotal, b.StorageTotal) &&
		eq(a.RecoveryTotal, b.RecoveryTotal) &&
		eq(a.Total, b.Total) &&
		eq(a.RemainingAmount, b.RemainingAmount) &&
		a.PaymentStatus == b.PaymentStatus
}
