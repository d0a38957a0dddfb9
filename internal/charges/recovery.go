package charges

import "github.com/fleetdesk/fleetdesk/internal/money"

// RecoveryCharge is the fixed cost of recovering a vehicle from the roadside.
type RecoveryCharge struct {
	Amount     float64 `json:"amount"`
	IncludeVAT bool    `json:"include_vat"`
	VATAmount  float64 `json:"vat_amount"`
	TotalCost  float64 `json:"total_cost"`
}

// PriceRecovery recomputes VATAmount and TotalCost.
func PriceRecovery(r RecoveryCharge, vatRate float64) (RecoveryCharge, error) {
	if err := checkAmounts(amountField{"amount", r.Amount}, amountField{"vat_rate", vatRate}); err != nil {
		return RecoveryCharge{}, err
	}
	base := money.Dec(r.Amount)
	vat := money.Dec(0)
	if r.IncludeVAT {
		vat = money.VATDec(base, money.Rate(vatRate))
	}
	out := r
	out.VATAmount = money.Float(vat)
	out.TotalCost = money.Float(money.RoundDec(base).Add(money.RoundDec(vat)))
	return out, nil
}
