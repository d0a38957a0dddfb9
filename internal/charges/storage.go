package charges

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

// StoragePeriod describes a vehicle held in storage and its derived cost.
type StoragePeriod struct {
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days"`
	CostPerDay float64   `json:"cost_per_day"`
	TotalCost  float64   `json:"total_cost"`
}

// StorageDays returns the elapsed time between start and end in days, with
// any partial day counted as a whole one. The end day is not included, so a
// vehicle collected the moment it arrived accrues nothing.
func StorageDays(start, end time.Time) (int, error) {
	if err := checkRange("storage", start, end); err != nil {
		return 0, err
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24)), nil
}

// PriceStorage recomputes Days and TotalCost from the period inputs.
func PriceStorage(p StoragePeriod) (StoragePeriod, error) {
	days, err := StorageDays(p.StartDate, p.EndDate)
	if err != nil {
		return StoragePeriod{}, err
	}
	if err := checkAmount("cost_per_day", p.CostPerDay); err != nil {
		return StoragePeriod{}, err
	}
	out := p
	out.Days = days
	out.TotalCost = money.Float(decimal.NewFromInt(int64(days)).Mul(money.Dec(p.CostPerDay)))
	return out, nil
}
