package claims

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/payment"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fullCharges() Charges {
	return Charges{
		Hire: charges.Enabled(charges.HirePeriod{
			StartDate:        date(2024, 1, 1),
			EndDate:          date(2024, 1, 3),
			DayRate:          340,
			DeliveryCharge:   50,
			CollectionCharge: 50,
			InsurancePerDay:  10,
		}),
		Storage: charges.Enabled(charges.StoragePeriod{
			StartDate:  date(2024, 1, 1),
			EndDate:    date(2024, 1, 3),
			CostPerDay: 25,
		}),
		Recovery: charges.Enabled(charges.RecoveryCharge{Amount: 180, IncludeVAT: true}),
	}
}

func TestPriceSumsEnabledSections(t *testing.T) {
	priced, totals, err := NewPricer(0.20).Price(fullCharges())
	require.NoError(t, err)

	assert.Equal(t, 1150.0, totals.HireTotal)
	assert.Equal(t, 50.0, totals.StorageTotal)
	assert.Equal(t, 216.0, totals.RecoveryTotal)
	assert.Equal(t, 1416.0, totals.Total)
	assert.Equal(t, 1416.0, totals.RemainingAmount)
	assert.Equal(t, payment.StatusPending, totals.PaymentStatus)

	hire, ok := priced.Hire.Get()
	require.True(t, ok)
	assert.Equal(t, 3, hire.DaysOfHire)
}

func TestPriceSkipsDisabledSections(t *testing.T) {
	in := fullCharges()
	in.Storage = charges.Disabled[charges.StoragePeriod]()
	in.Recovery = charges.Disabled[charges.RecoveryCharge]()
	in.PaidAmount = 1150

	_, totals, err := NewPricer(0.20).Price(in)
	require.NoError(t, err)
	assert.Zero(t, totals.StorageTotal)
	assert.Zero(t, totals.RecoveryTotal)
	assert.Equal(t, 1150.0, totals.Total)
	assert.Zero(t, totals.RemainingAmount)
	assert.Equal(t, payment.StatusPaid, totals.PaymentStatus)
}

func TestPriceReplacesStaleDerivedValues(t *testing.T) {
	in := fullCharges()
	hire, _ := in.Hire.Get()
	hire.DaysOfHire = 99
	hire.TotalCost = 1
	in.Hire = charges.Enabled(hire)

	priced, totals, err := NewPricer(0.20).Price(in)
	require.NoError(t, err)
	got, _ := priced.Hire.Get()
	assert.Equal(t, 3, got.DaysOfHire)
	assert.Equal(t, 1150.0, got.TotalCost)
	assert.Equal(t, 1150.0, totals.HireTotal)
}

func TestPriceErrors(t *testing.T) {
	pricer := NewPricer(0.20)

	in := fullCharges()
	in.Hire = charges.Enabled(charges.HirePeriod{StartDate: date(2024, 2, 1), EndDate: date(2024, 1, 1)})
	_, _, err := pricer.Price(in)
	var badRange *charges.InvalidRangeError
	require.True(t, errors.As(err, &badRange))
	assert.Equal(t, "hire", badRange.Field)

	in = fullCharges()
	in.PaidAmount = math.Inf(1)
	_, _, err = pricer.Price(in)
	require.Error(t, err)

	in = fullCharges()
	in.PaidAmount = -10
	_, _, err = pricer.Price(in)
	require.ErrorIs(t, err, charges.ErrNegativeAmount)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	pricer := NewPricer(0.20)
	c := Claim{Charges: fullCharges()}
	c.PaidAmount = 400

	first, err := pricer.Recompute(c)
	require.NoError(t, err)
	second, err := pricer.Recompute(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, payment.StatusPartiallyPaid, payment.Of(first))
}
