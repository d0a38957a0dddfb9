package main

import (
	"github.com/spf13/cobra"

	"github.com/fleetdesk/fleetdesk/internal/invoice"
)

func newInvoiceCmd() *cobra.Command {
	var (
		vatRate float64
		preview bool
	)
	cmd := &cobra.Command{
		Use:   "invoice [file]",
		Short: "Compute invoice totals",
		Example: `  fleetctl invoice repair.json
  echo '{"labor_hours":2,"labor_rate":40,"labor_vat":true}' | fleetctl invoice --vat-rate 0.2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in invoice.Input
			if err := readInput(cmd, args, &in); err != nil {
				return err
			}
			calc := invoice.NewCalculator(vatRate)
			if preview {
				return writeOutput(cmd, calc.Preview(in))
			}
			totals, err := calc.Calculate(in)
			if err != nil {
				return err
			}
			return writeOutput(cmd, totals)
		},
	}
	cmd.Flags().Float64Var(&vatRate, "vat-rate", 0.20, "VAT rate as a fraction")
	cmd.Flags().BoolVar(&preview, "preview", false, "treat invalid amounts as zero instead of failing")
	return cmd
}
