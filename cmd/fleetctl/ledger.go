package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetdesk/fleetdesk/internal/ledger"
)

func newLedgerCmd() *cobra.Command {
	var (
		owner        string
		defaultOwner string
		from, to     string
		category     string
		account      string
		search       string
	)
	cmd := &cobra.Command{
		Use:   "ledger [file]",
		Short: "Summarise a JSON array of transactions per owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var txs []ledger.Transaction
			if err := readInput(cmd, args, &txs); err != nil {
				return err
			}
			criteria := ledger.FilterCriteria{
				Owner:    ledger.ParseSelector(owner),
				Category: category,
				Account:  account,
				Search:   search,
			}
			var err error
			if criteria.From, err = parseDay(from, "from"); err != nil {
				return err
			}
			if criteria.To, err = parseDay(to, "to"); err != nil {
				return err
			}
			return writeOutput(cmd, criteria.Summarize(txs, defaultOwner))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", ledger.AllOwners, `owner to report, or "all"`)
	cmd.Flags().StringVar(&defaultOwner, "default-owner", "Company", "owner for transactions that name none")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&category, "category", "", "exact category")
	cmd.Flags().StringVar(&account, "account", "", "account on either side")
	cmd.Flags().StringVar(&search, "q", "", "case-insensitive text search")
	return cmd
}

func parseDay(v, name string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD", name)
	}
	return t, nil
}
