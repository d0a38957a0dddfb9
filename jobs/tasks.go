// Package jobs runs background work on asynq: periodic reconciliation of
// stored totals and owner statement rendering.
package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerReconcile recomputes stored invoice and claim totals.
	TaskLedgerReconcile = "ledger:reconcile"
	// TaskStatementRender renders an owner statement to disk.
	TaskStatementRender = "report:statement"
)

// ReconcilePayload configures a reconciliation run.
type ReconcilePayload struct {
	Repair bool `json:"repair"`
}

// NewReconcileTask constructs a reconciliation task.
func NewReconcileTask(repair bool) (*asynq.Task, error) {
	data, err := json.Marshal(ReconcilePayload{Repair: repair})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerReconcile, data), nil
}

// StatementPayload names the owner and optional period of a statement.
// Dates use YYYY-MM-DD.
type StatementPayload struct {
	Owner string `json:"owner"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// Period parses From and To; empty values give the zero time.
func (p StatementPayload) Period() (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if p.From != "" {
		if from, err = time.Parse(time.DateOnly, p.From); err != nil {
			return from, to, fmt.Errorf("statement payload: from: %w", err)
		}
	}
	if p.To != "" {
		if to, err = time.Parse(time.DateOnly, p.To); err != nil {
			return from, to, fmt.Errorf("statement payload: to: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("statement payload: to precedes from")
	}
	return from, to, nil
}

// NewStatementTask constructs a statement render task.
func NewStatementTask(payload StatementPayload) (*asynq.Task, error) {
	payload.Owner = strings.TrimSpace(payload.Owner)
	if _, _, err := payload.Period(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatementRender, data), nil
}
