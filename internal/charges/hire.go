// Package charges prices the time-based parts of a claim: vehicle hire,
// storage and recovery. Every function is pure and returns a complete new
// value; callers replace the previous derived figures wholesale.
package charges

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

// HirePeriod describes a replacement-vehicle hire and its derived cost.
type HirePeriod struct {
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	DaysOfHire       int       `json:"days_of_hire"`
	DayRate          float64   `json:"day_rate"`
	DeliveryCharge   float64   `json:"delivery_charge"`
	CollectionCharge float64   `json:"collection_charge"`
	InsurancePerDay  float64   `json:"insurance_per_day"`
	TotalCost        float64   `json:"total_cost"`
}

// DaysOfHire counts calendar days from start to end, both inclusive. A hire
// that starts and ends on the same day is one day long.
func DaysOfHire(start, end time.Time) (int, error) {
	if err := checkRange("hire", start, end); err != nil {
		return 0, err
	}
	days := calendarDays(start, end)
	if days < 0 {
		return 0, &InvalidRangeError{Field: "hire", Start: start, End: end}
	}
	return days + 1, nil
}

// PriceHire recomputes DaysOfHire and TotalCost from the period inputs.
func PriceHire(p HirePeriod) (HirePeriod, error) {
	days, err := DaysOfHire(p.StartDate, p.EndDate)
	if err != nil {
		return HirePeriod{}, err
	}
	if err := checkAmounts(
		amountField{"day_rate", p.DayRate},
		amountField{"delivery_charge", p.DeliveryCharge},
		amountField{"collection_charge", p.CollectionCharge},
		amountField{"insurance_per_day", p.InsurancePerDay},
	); err != nil {
		return HirePeriod{}, err
	}

	n := decimal.NewFromInt(int64(days))
	total := n.Mul(money.Dec(p.DayRate)).
		Add(money.Dec(p.DeliveryCharge)).
		Add(money.Dec(p.CollectionCharge)).
		Add(n.Mul(money.Dec(p.InsurancePerDay)))

	out := p
	out.DaysOfHire = days
	out.TotalCost = money.Float(total)
	return out, nil
}

// calendarDays returns the number of midnights between the calendar dates of
// start and end, evaluated in start's location.
func calendarDays(start, end time.Time) int {
	end = end.In(start.Location())
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
