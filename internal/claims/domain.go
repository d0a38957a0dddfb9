// Package claims holds the insurance claim aggregate: optional hire, storage
// and recovery charges, the amount paid against them and the claim's
// progress history.
package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/payment"
	"github.com/fleetdesk/fleetdesk/internal/progress"
)

// StatusOpen is the status of a claim with no progress entries.
const StatusOpen = "open"

// Charges are the editable money fields of a claim.
type Charges struct {
	Hire       charges.Section[charges.HirePeriod]     `json:"hire"`
	Storage    charges.Section[charges.StoragePeriod]  `json:"storage"`
	Recovery   charges.Section[charges.RecoveryCharge] `json:"recovery"`
	PaidAmount float64                                 `json:"paid_amount"`
}

// Totals are derived from Charges and replaced wholesale on every recompute.
type Totals struct {
	HireTotal       float64        `json:"hire_total"`
	StorageTotal    float64        `json:"storage_total"`
	RecoveryTotal   float64        `json:"recovery_total"`
	Total           float64        `json:"total"`
	RemainingAmount float64        `json:"remaining_amount"`
	PaymentStatus   payment.Status `json:"payment_status"`
}

// Claim is the persisted aggregate.
type Claim struct {
	ID         uuid.UUID `json:"id"`
	Reference  string    `json:"reference"`
	ClientName string    `json:"client_name"`
	VehicleReg string    `json:"vehicle_reg"`
	Status     string    `json:"status"`
	Charges
	Totals
	Progress  progress.Log `json:"progress"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// AmountDue implements payment.Priced.
func (c Claim) AmountDue() float64 { return c.Total }

// AmountPaid implements payment.Priced.
func (c Claim) AmountPaid() float64 { return c.PaidAmount }

// Checked pairs a recomputed claim with whether its stored totals drifted.
type Checked struct {
	Claim  Claim   `json:"claim"`
	Drift  bool    `json:"drift"`
	Stored *Totals `json:"stored,omitempty"`
}

// CreateInput for opening a claim.
type CreateInput struct {
	Reference  string `json:"reference" validate:"required,max=64"`
	ClientName string `json:"client_name" validate:"required,max=200"`
	VehicleReg string `json:"vehicle_reg" validate:"max=16"`
	Charges
}

// ProgressInput records a status change. ID is optional; a client re-sending
// the same ID gets progress.ErrDuplicateEntry instead of a second entry.
type ProgressInput struct {
	ID     uuid.UUID `json:"id"`
	Date   time.Time `json:"date"`
	Status string    `json:"status" validate:"required,max=64"`
	Note   string    `json:"note" validate:"max=2000"`
	Author string    `json:"author" validate:"max=200"`
}

// ReconcileReport summarises a recompute pass over stored claims.
type ReconcileReport struct {
	Checked  int         `json:"checked"`
	Drifted  []uuid.UUID `json:"drifted"`
	Repaired int         `json:"repaired"`
	Failed   []uuid.UUID `json:"failed"`
}
