package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List decks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		decks, err := a.decks.ListDecks(cmd.Context())
		if err != nil {
			return err
		}
		if len(decks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No decks yet. Create one with: brainstack decks add <name>")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCARDS\tACCURACY")
		for _, d := range decks {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f%%\n", d.ID, d.Name, d.CardCount, d.Stats.Accuracy*100)
		}
		return tw.Flush()
	},
}

var addDeckCmd = &cobra.Command{
	Use:   "add <name> [description]",
	Short: "Create a deck",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.decks.CreateDeck(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created deck %q (%s)\n", d.Name, d.ID)
		return nil
	},
}

func init() {
	decksCmd.AddCommand(addDeckCmd)
	rootCmd.AddCommand(decksCmd)
}
