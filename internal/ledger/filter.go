package ledger

import (
	"strings"
	"time"
)

// FilterCriteria selects the visible transaction set. It is a plain value:
// callers build one per request and pass it down.
type FilterCriteria struct {
	From     time.Time
	To       time.Time
	Owner    Selector
	Category string
	Account  string
	Search   string
}

// Matches reports whether tx passes every criterion. From and To are
// inclusive calendar days; Account matches either side of a transfer; Search
// is a case-insensitive substring over the descriptive fields.
func (f FilterCriteria) Matches(tx Transaction, defaultOwner string) bool {
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Date.Before(f.To.AddDate(0, 0, 1)) {
		return false
	}
	if !f.Owner.All() && EffectiveOwner(tx, defaultOwner) != f.Owner.Owner() {
		return false
	}
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(tx.Category, c) {
		return false
	}
	if a := strings.TrimSpace(f.Account); a != "" &&
		!strings.EqualFold(tx.AccountFrom, a) && !strings.EqualFold(tx.AccountTo, a) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(strings.Join([]string{
			tx.Description, tx.Category, tx.AccountFrom, tx.AccountTo, tx.OwnerName(),
		}, "\x00"))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Apply returns the matching transactions in their original order. The input
// slice is left untouched.
func (f FilterCriteria) Apply(txs []Transaction, defaultOwner string) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx, defaultOwner) {
			out = append(out, tx)
		}
	}
	return out
}

// Summarize filters txs and aggregates the result for the criteria's owner
// selection.
func (f FilterCriteria) Summarize(txs []Transaction, defaultOwner string) Summary {
	return Aggregate(f.Apply(txs, defaultOwner), f.Owner, defaultOwner)
}
