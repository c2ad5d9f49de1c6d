package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventx/budget"
)

var (
	budgetGuests   int
	budgetServices []string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Estimate the cost of organising an event",
	Long: `Estimate an event budget from the price list. Catering is charged per
guest; every other service is a flat fee.

Examples:
  eventx budget --guests 150 --services catering,venue,photography`,
	RunE: func(cmd *cobra.Command, args []string) error {
		est, err := budget.Calculate(budgetGuests, budgetServices)
		if err != nil {
			return err
		}
		printEstimate(cmd.OutOrStdout(), est)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(budgetCmd)

	budgetCmd.Flags().IntVar(&budgetGuests, "guests", 0, "Number of guests")
	budgetCmd.Flags().StringSliceVar(&budgetServices, "services", nil, "Comma-separated services: catering, photography, venue, decorations, entertainment")
}

func printEstimate(w io.Writer, est *budget.Estimate) {
	if len(est.Lines) == 0 {
		fmt.Fprintln(w, "Select services to see cost breakdown")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, l := range est.Lines {
			fmt.Fprintf(tw, "%s\t%s EGP\n", l.Name, l.Cost.StringFixed(0))
		}
		tw.Flush()
	}
	fmt.Fprintf(w, "Total: %s EGP\n", est.Total.StringFixed(0))
}
