package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Audit the configured dataset source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		table, dataErr := loadTable(ctx)
		if dataErr != "" {
			fmt.Fprintf(out, "load failed: %s\n", dataErr)
			return nil
		}

		fmt.Fprintf(out, "source:  %s\n", cfg.Dataset.Source)
		fmt.Fprintf(out, "rows:    %d\n", table.Len())

		if table.Len() == 0 {
			return nil
		}

		yearMin, yearMax := table.YearRange()
		revMin, revMax := table.RevenueRange()
		marginMin, marginMax := table.MarginRange()

		fmt.Fprintf(out, "years:   %d..%d\n", yearMin, yearMax)
		fmt.Fprintf(out, "revenue: %.2f..%.2f\n", revMin, revMax)
		fmt.Fprintf(out, "margin:  %.2f..%.2f\n", marginMin, marginMax)
		fmt.Fprintf(out, "regions:\n")
		for _, r := range table.Regions() {
			n := 0
			for i := 0; i < table.Len(); i++ {
				if table.At(i).Region == r {
					n++
				}
			}
			fmt.Fprintf(out, "  %-30s %d\n", r, n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
