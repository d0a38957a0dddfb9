package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/payment"
)

// LineItem is one priced part on an invoice. VAT is flagged per line and
// kept out of the summed parts figure.
type LineItem struct {
	Name       string  `json:"name" validate:"max=200"`
	Quantity   int     `json:"quantity" validate:"gte=0"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
	IncludeVAT bool    `json:"include_vat"`
}

// Input collects everything the calculator reads.
type Input struct {
	LineItems       []LineItem `json:"line_items" validate:"dive"`
	LaborHours      float64    `json:"labor_hours" validate:"gte=0"`
	LaborRate       float64    `json:"labor_rate" validate:"gte=0"`
	LaborVAT        bool       `json:"labor_vat"`
	MaterialsAmount float64    `json:"materials_amount" validate:"gte=0"`
	MaterialsVAT    bool       `json:"materials_vat"`
	PaidAmount      float64    `json:"paid_amount" validate:"gte=0"`
}

// Totals are the derived figures. They are never edited directly; every
// change to Input produces a complete new Totals.
type Totals struct {
	PartsTotal      float64        `json:"parts_total"`
	LaborCost       float64        `json:"labor_cost"`
	MaterialsTotal  float64        `json:"materials_total"`
	Subtotal        float64        `json:"subtotal"`
	VATAmount       float64        `json:"vat_amount"`
	Total           float64        `json:"total"`
	RemainingAmount float64        `json:"remaining_amount"`
	PaymentStatus   payment.Status `json:"payment_status"`
	Overpaid        bool           `json:"overpaid"`
}

// Invoice is the persisted aggregate.
type Invoice struct {
	ID      uuid.UUID  `json:"id"`
	Number  string     `json:"number"`
	ClaimID *uuid.UUID `json:"claim_id,omitempty"`
	Date    time.Time  `json:"date"`
	Input
	Totals
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AmountDue implements payment.Priced.
func (i Invoice) AmountDue() float64 { return i.Total }

// AmountPaid implements payment.Priced.
func (i Invoice) AmountPaid() float64 { return i.PaidAmount }

// Checked pairs a freshly recomputed invoice with whether the stored derived
// figures disagreed with the recomputation.
type Checked struct {
	Invoice Invoice `json:"invoice"`
	Drift   bool    `json:"drift"`
	Stored  *Totals `json:"stored,omitempty"`
}

// CreateInput for creating invoices.
type CreateInput struct {
	Number  string     `json:"number" validate:"max=64"`
	ClaimID *uuid.UUID `json:"claim_id,omitempty"`
	Date    time.Time  `json:"date"`
	Input
}

// ListRequest filters invoice listings.
type ListRequest struct {
	Status   payment.Status
	ClaimID  *uuid.UUID
	FromDate time.Time
	ToDate   time.Time
	Limit    int
	Offset   int
}

// ReconcileReport summarises a recompute pass over stored invoices.
type ReconcileReport struct {
	Checked  int         `json:"checked"`
	Drifted  []uuid.UUID `json:"drifted"`
	Repaired int         `json:"repaired"`
	Failed   []uuid.UUID `json:"failed"`
}
