// Package payment classifies priced entities by how much of their total has
// been paid. Resolve is the only place in the module that infers a payment
// status; everything else stores or displays its result.
package payment

import "github.com/fleetdesk/fleetdesk/internal/money"

// Status enumerates payment states.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartiallyPaid, StatusPaid:
		return true
	}
	return false
}

// Label returns a human readable label.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusPartiallyPaid:
		return "Partially paid"
	case StatusPaid:
		return "Paid"
	default:
		return string(s)
	}
}

// Resolve derives the status from a total and the amount paid so far. Both
// values are compared at two-decimal precision so that a payment matching the
// displayed total is always paid.
func Resolve(total, paid float64) Status {
	t := money.Round2(total)
	p := money.Round2(paid)
	switch {
	case p <= 0:
		return StatusPending
	case p < t:
		return StatusPartiallyPaid
	default:
		return StatusPaid
	}
}

// Priced is implemented by records that carry a total and a paid amount.
type Priced interface {
	AmountDue() float64
	AmountPaid() float64
}

// Of resolves the status of any priced record.
func Of(p Priced) Status {
	return Resolve(p.AmountDue(), p.AmountPaid())
}
