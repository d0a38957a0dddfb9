package progress

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/platform/db"
)

// Repository persists progress entries in claim_progress. The table has no
// UPDATE or DELETE path here; rows are ordered by their insertion sequence.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository over a pool or an open transaction.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Append inserts e for the claim. Re-sending an entry that is already stored
// returns ErrDuplicateEntry.
func (r *Repository) Append(ctx context.Context, claimID uuid.UUID, e Entry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO claim_progress (id, claim_id, occurred_at, status, note, author)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, claimID, e.Date, e.Status, e.Note, e.Author)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// List returns the claim's entries in append order.
func (r *Repository) List(ctx context.Context, claimID uuid.UUID) ([]Entry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, occurred_at, status, note, author
		FROM claim_progress
		WHERE claim_id = $1
		ORDER BY seq`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Status, &e.Note, &e.Author); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
