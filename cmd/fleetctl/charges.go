package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetdesk/fleetdesk/internal/charges"
)

func newHireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hire [file]",
		Short: "Price a hire period",
		Example: `  echo '{"start_date":"2024-01-01T00:00:00Z","end_date":"2024-01-03T00:00:00Z","day_rate":340,"delivery_charge":50,"collection_charge":50,"insurance_per_day":10}' | fleetctl hire`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p charges.HirePeriod
			if err := readInput(cmd, args, &p); err != nil {
				return err
			}
			priced, err := charges.PriceHire(p)
			if err != nil {
				return err
			}
			return writeOutput(cmd, priced)
		},
	}
}

func newStorageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storage [file]",
		Short: "Price a storage period",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p charges.StoragePeriod
			if err := readInput(cmd, args, &p); err != nil {
				return err
			}
			priced, err := charges.PriceStorage(p)
			if err != nil {
				return err
			}
			return writeOutput(cmd, priced)
		},
	}
}
