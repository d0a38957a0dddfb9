// Package money holds the numeric rules shared by every calculator: two-decimal
// rounding, VAT application and extraction, and non-negative clamping.
//
// Arithmetic is carried out on shopspring decimals so that repeated
// recomputation of the same inputs yields identical results. Values cross the
// package boundary as float64 because that is how records arrive from storage
// and JSON.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultVATRate is the observed standard rate. Callers pass the configured
// rate explicitly; nothing in this package reads it implicitly.
const DefaultVATRate = 0.20

// Places is the number of decimal places every persisted or displayed amount
// carries.
const Places = 2

// NonFiniteAmountError reports a NaN or infinite input amount.
type NonFiniteAmountError struct {
	Field string
	Value float64
}

func (e *NonFiniteAmountError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("money: non-finite amount %v", e.Value)
	}
	return fmt.Sprintf("money: %s is not a finite amount (%v)", e.Field, e.Value)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Finite returns a *NonFiniteAmountError when x is not finite. Strict
// calculators use it so that a bad input never reaches a stored total.
func Finite(field string, x float64) error {
	if IsFinite(x) {
		return nil
	}
	return &NonFiniteAmountError{Field: field, Value: x}
}

// Sanitize maps non-finite input to 0 for display paths.
func Sanitize(x float64) float64 {
	if !IsFinite(x) {
		return 0
	}
	return x
}

// Dec converts x to a decimal, treating non-finite input as 0.
func Dec(x float64) decimal.Decimal {
	if !IsFinite(x) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x)
}

// Rate converts a VAT rate to a decimal.
func Rate(rate float64) decimal.Decimal {
	return Dec(rate)
}

// RoundDec rounds d to two places, halves away from zero.
func RoundDec(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Float rounds d to two places and returns it as float64.
func Float(d decimal.Decimal) float64 {
	return RoundDec(d).InexactFloat64()
}

// Round2 rounds x to two decimal places; 1.005 becomes 1.01.
func Round2(x float64) float64 {
	return Float(Dec(x))
}

// GrossDec returns base * (1 + rate).
func GrossDec(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(1).Add(rate))
}

// VATDec returns base * rate.
func VATDec(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate)
}

// ClampDec returns max(0, d).
func ClampDec(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ApplyVAT returns base grossed up by rate.
func ApplyVAT(base, rate float64) float64 {
	return GrossDec(Dec(base), Dec(rate)).InexactFloat64()
}

// VATPortion returns the VAT due on base at rate.
func VATPortion(base, rate float64) float64 {
	return VATDec(Dec(base), Dec(rate)).InexactFloat64()
}

// ClampNonNegative returns max(0, x). Non-finite input yields 0.
func ClampNonNegative(x float64) float64 {
	x = Sanitize(x)
	if x < 0 {
		return 0
	}
	return x
}
