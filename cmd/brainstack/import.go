package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <deck-id> <path|git-url>",
	Short: "Import Q:/A: markdown cards from a directory or git repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.importer.Import(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d files (%d failed): %d cards added, %d already present.\n",
			res.Files, res.FailedFiles, res.Added, res.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
