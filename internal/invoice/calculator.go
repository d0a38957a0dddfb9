package invoice

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/money"
	"github.com/fleetdesk/fleetdesk/internal/payment"
)

// ErrInvalidInput wraps validation failures on calculator input.
var ErrInvalidInput = errors.New("invoice: invalid input")

// Calculator turns line items, labor and materials into invoice totals.
type Calculator struct {
	vatRate  float64
	validate *validator.Validate
}

// NewCalculator builds a calculator for the given VAT rate.
func NewCalculator(vatRate float64) *Calculator {
	return &Calculator{vatRate: vatRate, validate: validator.New()}
}

// VATRate returns the configured rate.
func (c *Calculator) VATRate() float64 {
	return c.vatRate
}

// Calculate computes totals for figures that will be persisted. Non-finite or
// negative inputs are rejected rather than zeroed.
func (c *Calculator) Calculate(in Input) (Totals, error) {
	if err := c.checkFinite(in); err != nil {
		return Totals{}, err
	}
	if err := c.validate.Struct(in); err != nil {
		return Totals{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return compute(in, c.vatRate), nil
}

// Preview computes totals for display while a form is being edited.
// Non-finite and negative inputs count as zero so the form always renders.
func (c *Calculator) Preview(in Input) Totals {
	return compute(sanitize(in), money.Sanitize(c.vatRate))
}

// Recompute returns inv with every derived figure replaced.
func (c *Calculator) Recompute(inv Invoice) (Invoice, error) {
	totals, err := c.Calculate(inv.Input)
	if err != nil {
		return inv, err
	}
	inv.Totals = totals
	return inv, nil
}

func (c *Calculator) checkFinite(in Input) error {
	if err := money.Finite("vat_rate", c.vatRate); err != nil {
		return err
	}
	for i, item := range in.LineItems {
		if err := money.Finite(fmt.Sprintf("line_items[%d].unit_price", i), item.UnitPrice); err != nil {
			return err
		}
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"labor_hours", in.LaborHours},
		{"labor_rate", in.LaborRate},
		{"materials_amount", in.MaterialsAmount},
		{"paid_amount", in.PaidAmount},
	}
	for _, f := range fields {
		if err := money.Finite(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func compute(in Input, vatRate float64) Totals {
	rate := money.Rate(vatRate)

	parts := decimal.Zero
	vat := decimal.Zero
	for _, item := range in.LineItems {
		line := money.Dec(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		parts = parts.Add(line)
		if item.IncludeVAT {
			vat = vat.Add(money.VATDec(line, rate))
		}
	}

	laborBase := money.Dec(in.LaborHours).Mul(money.Dec(in.LaborRate))
	laborCost := laborBase
	if in.LaborVAT {
		laborCost = money.GrossDec(laborBase, rate)
		vat = vat.Add(money.VATDec(laborBase, rate))
	}

	materials := money.Dec(in.MaterialsAmount)
	materialsTotal := materials
	if in.MaterialsVAT {
		materialsTotal = money.GrossDec(materials, rate)
		vat = vat.Add(money.VATDec(materials, rate))
	}

	subtotal := money.RoundDec(parts.Add(laborBase).Add(materials))
	vat = money.RoundDec(vat)
	total := subtotal.Add(vat)
	paid := money.RoundDec(money.Dec(in.PaidAmount))
	remaining := money.ClampDec(total.Sub(paid))

	totalF := total.InexactFloat64()
	paidF := paid.InexactFloat64()
	return Totals{
		PartsTotal:      money.Float(parts),
		LaborCost:       money.Float(laborCost),
		MaterialsTotal:  money.Float(materialsTotal),
		Subtotal:        subtotal.InexactFloat64(),
		VATAmount:       vat.InexactFloat64(),
		Total:           totalF,
		RemainingAmount: remaining.InexactFloat64(),
		PaymentStatus:   payment.Resolve(totalF, paidF),
		Overpaid:        paid.GreaterThan(total),
	}
}

func sanitize(in Input) Input {
	out := in
	out.LineItems = make([]LineItem, len(in.LineItems))
	for i, item := range in.LineItems {
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		item.UnitPrice = money.ClampNonNegative(item.UnitPrice)
		out.LineItems[i] = item
	}
	out.LaborHours = money.ClampNonNegative(in.LaborHours)
	out.LaborRate = money.ClampNonNegative(in.LaborRate)
	out.MaterialsAmount = money.ClampNonNegative(in.MaterialsAmount)
	out.PaidAmount = money.ClampNonNegative(in.PaidAmount)
	return out
}

// SameTotals reports whether two sets of derived figures agree to the cent.
func SameTotals(a, b Totals) bool {
	eq := func(x, y float64) bool { return money.Round2(x) == money.Round2(y) }
	return eq(a.PartsTotal, b.PartsTotal) &&
		eq(a.LaborCost, b.LaborCost) &&
		eq(a.MaterialsTotal, b.MaterialsTotal) &&
		eq(a.Subtotal, b.Subtotal) &&
		eq(a.VATAmount, b.VATAmount) &&
		eq(a.Total, b.Total) &&
		eq(a.RemainingAmount, b.RemainingAmount) &&
		a.PaymentStatus == b.PaymentStatus
}
