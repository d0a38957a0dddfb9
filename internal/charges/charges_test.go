package charges

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysOfHireIsInclusive(t *testing.T) {
	days, err := DaysOfHire(date(2024, 1, 1), date(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = DaysOfHire(date(2024, 1, 1), date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	// Time of day does not matter for hire.
	start := time.Date(2024, 2, 28, 17, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	days, err = DaysOfHire(start, end)
	require.NoError(t, err)
	assert.Equal(t, 3, days)
}

func TestPriceHireExample(t *testing.T) {
	p, err := PriceHire(HirePeriod{
		StartDate:        date(2024, 1, 1),
		EndDate:          date(2024, 1, 3),
		DayRate:          340,
		DeliveryCharge:   50,
		CollectionCharge: 50,
		InsurancePerDay:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.DaysOfHire)
	assert.Equal(t, 1150.0, p.TotalCost)
}

func TestPriceHireReplacesStaleValues(t *testing.T) {
	p := HirePeriod{
		StartDate:  date(2024, 5, 1),
		EndDate:    date(2024, 5, 10),
		DaysOfHire: 99,
		DayRate:    45.5,
		TotalCost:  1,
	}
	first, err := PriceHire(p)
	require.NoError(t, err)
	assert.Equal(t, 10, first.DaysOfHire)
	assert.Equal(t, 455.0, first.TotalCost)

	again, err := PriceHire(first)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestPriceHireRejectsInvertedRange(t *testing.T) {
	_, err := PriceHire(HirePeriod{StartDate: date(2024, 1, 5), EndDate: date(2024, 1, 3), DayRate: 10})
	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "hire", rangeErr.Field)
	assert.Contains(t, err.Error(), "2024-01-03")
}

func TestPriceHireRejectsBadAmounts(t *testing.T) {
	_, err := PriceHire(HirePeriod{StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2), DayRate: math.NaN()})
	var nf *money.NonFiniteAmountError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "day_rate", nf.Field)

	_, err = PriceHire(HirePeriod{StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2), DeliveryCharge: -1})
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, err = PriceHire(HirePeriod{EndDate: date(2024, 1, 2)})
	require.ErrorIs(t, err, ErrMissingDates)
}

func TestPriceStorageRoundsPartialDaysUp(t *testing.T) {
	p, err := PriceStorage(StoragePeriod{
		StartDate:  date(2024, 1, 1),
		EndDate:    date(2024, 1, 3),
		CostPerDay: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Days)
	assert.Equal(t, 50.0, p.TotalCost)

	p, err = PriceStorage(StoragePeriod{
		StartDate:  date(2024, 1, 1),
		EndDate:    date(2024, 1, 3).Add(3 * time.Hour),
		CostPerDay: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Days)
	assert.Equal(t, 75.0, p.TotalCost)

	p, err = PriceStorage(StoragePeriod{StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 1), CostPerDay: 25})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Days)
	assert.Equal(t, 0.0, p.TotalCost)
}

func TestPriceStorageRejectsInvertedRange(t *testing.T) {
	_, err := PriceStorage(StoragePeriod{StartDate: date(2024, 1, 3), EndDate: date(2024, 1, 1), CostPerDay: 25})
	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "storage", rangeErr.Field)
}

func TestPriceRecovery(t *testing.T) {
	r, err := PriceRecovery(RecoveryCharge{Amount: 180, IncludeVAT: true}, money.DefaultVATRate)
	require.NoError(t, err)
	assert.Equal(t, 36.0, r.VATAmount)
	assert.Equal(t, 216.0, r.TotalCost)

	r, err = PriceRecovery(RecoveryCharge{Amount: 180}, money.DefaultVATRate)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.VATAmount)
	assert.Equal(t, 180.0, r.TotalCost)

	_, err = PriceRecovery(RecoveryCharge{Amount: math.Inf(1)}, money.DefaultVATRate)
	require.Error(t, err)
}

func TestSectionVariants(t *testing.T) {
	off := Disabled[HirePeriod]()
	_, ok := off.Get()
	assert.False(t, ok)

	priced, err := Price(off, PriceHire)
	require.NoError(t, err)
	assert.False(t, priced.IsEnabled())

	on := Enabled(HirePeriod{StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 3), DayRate: 340, DeliveryCharge: 50, CollectionCharge: 50, InsurancePerDay: 10})
	priced, err = Price(on, PriceHire)
	require.NoError(t, err)
	details, ok := priced.Get()
	require.True(t, ok)
	assert.Equal(t, 1150.0, details.TotalCost)
}

func TestSectionJSON(t *testing.T) {
	raw, err := json.Marshal(Disabled[StoragePeriod]())
	require.NoError(t, err)
	assert.JSONEq(t, `{"enabled":false}`, string(raw))

	var s Section[StoragePeriod]
	require.NoError(t, json.Unmarshal([]byte(`{"enabled":true,"details":{"start_date":"2024-01-01T00:00:00Z","end_date":"2024-01-04T00:00:00Z","cost_per_day":10}}`), &s))
	details, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, 10.0, details.CostPerDay)

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.False(t, s.IsEnabled())

	require.NoError(t, json.Unmarshal([]byte(`{"enabled":true}`), &s))
	assert.False(t, s.IsEnabled())
}
