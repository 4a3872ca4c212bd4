package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.progress.Report(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		o := report.Overall
		fmt.Fprintln(out, "Statistics")
		fmt.Fprintln(out, "----------")
		fmt.Fprintf(out, "Decks:          %d\n", o.TotalDecks)
		fmt.Fprintf(out, "Cards:          %d\n", o.TotalCards)
		fmt.Fprintf(out, "Sessions:       %d\n", o.TotalStudySessions)
		fmt.Fprintf(out, "Cards studied:  %d\n", o.TotalCardsStudied)
		fmt.Fprintf(out, "Accuracy:       %.1f%%\n", o.OverallAccuracy*100)
		for _, d := range report.Decks {
			fmt.Fprintf(out, "  %-20s %4d studied  %5.1f%%\n", d.DeckName, d.TotalCards, d.Accuracy*100)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
