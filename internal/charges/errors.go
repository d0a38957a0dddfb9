package charges

import (
	"errors"
	"fmt"
	"time"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

var (
	// ErrMissingDates indicates a period without a start or end date.
	ErrMissingDates = errors.New("charges: start and end dates are required")
	// ErrNegativeAmount indicates a rate or charge below zero.
	ErrNegativeAmount = errors.New("charges: amount must not be negative")
)

// InvalidRangeError reports a period whose end precedes its start. The
// calculators refuse to price such a period instead of clamping to zero days.
type InvalidRangeError struct {
	Field string
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("charges: %s end date %s precedes start date %s",
		e.Field, e.End.Format(time.DateOnly), e.Start.Format(time.DateOnly))
}

func checkRange(field string, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w (%s)", ErrMissingDates, field)
	}
	if end.Before(start) {
		return &InvalidRangeError{Field: field, Start: start, End: end}
	}
	return nil
}

func checkAmount(field string, v float64) error {
	if err := money.Finite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, field)
	}
	return nil
}

type amountField struct {
	name  string
	value float64
}

func checkAmounts(fields ...amountField) error {
	for _, f := range fields {
		if err := checkAmount(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}
