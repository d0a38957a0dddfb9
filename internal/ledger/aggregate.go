package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

// AllOwners is the selector value that aggregates every owner.
const AllOwners = "all"

// Selector chooses which owners an aggregate covers. The zero value selects
// every owner.
type Selector struct {
	owner string
}

// SelectAll returns a selector covering every owner.
func SelectAll() Selector { return Selector{} }

// SelectOwner returns a selector for a single owner name.
func SelectOwner(name string) Selector { return Selector{owner: strings.TrimSpace(name)} }

// ParseSelector reads the owner query value: "" or "all" select everyone,
// anything else names one owner.
func ParseSelector(v string) Selector {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, AllOwners) {
		return SelectAll()
	}
	return SelectOwner(v)
}

// All reports whether the selector covers every owner.
func (s Selector) All() bool { return s.owner == "" }

// Owner returns the selected owner name, or "" for all owners.
func (s Selector) Owner() string { return s.owner }

func (s Selector) String() string {
	if s.All() {
		return AllOwners
	}
	return s.owner
}

// EffectiveOwner returns the owner a transaction nets against: its explicit
// owner when it has one, otherwise defaultOwner. The transaction itself is
// not modified.
func EffectiveOwner(tx Transaction, defaultOwner string) string {
	if name := tx.OwnerName(); name != "" {
		return name
	}
	return defaultOwner
}

// signed returns +amount for income and -amount for expense, or an error
// describing why the transaction cannot be counted.
func signed(tx Transaction) (decimal.Decimal, error) {
	if err := money.Finite("amount", tx.Amount); err != nil {
		return decimal.Zero, err
	}
	if tx.Amount < 0 {
		return decimal.Zero, fmt.Errorf("negative amount %v", tx.Amount)
	}
	amount := money.Dec(tx.Amount)
	switch tx.Type {
	case TypeIncome:
		return amount, nil
	case TypeExpense:
		return amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown type %q", tx.Type)
	}
}

// Aggregate nets txs per effective owner and derives the amount owing for the
// selection. It always works from the complete slice it is given, never
// mutates it, and never fails: transactions that cannot be counted are listed
// in Excluded instead.
func Aggregate(txs []Transaction, sel Selector, defaultOwner string) Summary {
	nets := make(map[string]decimal.Decimal)
	var excluded []Exclusion
	count := 0
	for _, tx := range txs {
		owner := EffectiveOwner(tx, defaultOwner)
		if !sel.All() && owner != sel.Owner() {
			continue
		}
		amount, err := signed(tx)
		if err != nil {
			excluded = append(excluded, Exclusion{ID: tx.ID, Reason: err.Error()})
			continue
		}
		nets[owner] = nets[owner].Add(amount)
		count++
	}
	if !sel.All() {
		if _, ok := nets[sel.Owner()]; !ok {
			nets[sel.Owner()] = decimal.Zero
		}
	}

	owing := decimal.Zero
	perOwner := make(map[string]float64, len(nets))
	for owner, net := range nets {
		perOwner[owner] = money.Float(net)
		owing = owing.Add(money.ClampDec(net.Neg()))
	}
	if excluded == nil {
		excluded = []Exclusion{}
	}
	return Summary{
		Owner:       sel.String(),
		PerOwnerNet: perOwner,
		TotalOwing:  money.Float(owing),
		Count:       count,
		Excluded:    excluded,
	}
}

// Owners returns the owner names in a summary, sorted.
func (s Summary) Owners() []string {
	names := make([]string, 0, len(s.PerOwnerNet))
	for name := range s.PerOwnerNet {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
