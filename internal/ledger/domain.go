// Package ledger nets income and expense transactions per vehicle owner and
// reports how much each owner is in deficit.
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type distinguishes money in from money out.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Owner is the party a transaction is attributed to.
type Owner struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// Transaction is a single income or expense record.
type Transaction struct {
	ID           uuid.UUID `json:"id"`
	Type         Type      `json:"type"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	Category     string    `json:"category"`
	AccountFrom  string    `json:"account_from,omitempty"`
	AccountTo    string    `json:"account_to,omitempty"`
	VehicleOwner *Owner    `json:"vehicle_owner,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// OwnerName returns the explicit owner name, trimmed, or "" when the
// transaction carries none.
func (t Transaction) OwnerName() string {
	if t.VehicleOwner == nil {
		return ""
	}
	return strings.TrimSpace(t.VehicleOwner.Name)
}

// CreateInput for recording transactions.
type CreateInput struct {
	Type        Type      `json:"type" validate:"required,oneof=income expense"`
	Amount      float64   `json:"amount" validate:"gte=0"`
	Date        time.Time `json:"date" validate:"required"`
	Category    string    `json:"category" validate:"required,max=100"`
	AccountFrom string    `json:"account_from" validate:"max=100"`
	AccountTo   string    `json:"account_to" validate:"max=100"`
	OwnerName   string    `json:"owner_name" validate:"max=200"`
	Description string    `json:"description" validate:"max=500"`
}

// Exclusion records a transaction left out of an aggregate and why.
type Exclusion struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// Summary is the derived per-owner position. It is recomputed on every
// request and never stored.
type Summary struct {
	Owner       string             `json:"owner"`
	PerOwnerNet map[string]float64 `json:"per_owner_net"`
	TotalOwing  float64            `json:"total_owing"`
	Count       int                `json:"transaction_count"`
	Excluded    []Exclusion        `json:"excluded"`
}

// Statement is one owner's summary together with the transactions behind it.
type Statement struct {
	Owner        string        `json:"owner"`
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	Summary      Summary       `json:"summary"`
	Transactions []Transaction `json:"transactions"`
	GeneratedAt  time.Time     `json:"generated_at"`
}
