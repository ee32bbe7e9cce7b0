package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systemshift/minddump/internal/server/fixtures"
	"github.com/systemshift/minddump/internal/server/store"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures [file]",
	Short: "Validate a fixture file and print what it would load",
	Long: `Parses the given fixture file, or the built-in sample data when no file
is given, and checks every cross reference the server would check at startup.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		file, err := fixtures.Load(path)
		if err != nil {
			return err
		}
		seed, err := file.Seed(time.Now().UTC())
		if err != nil {
			return fmt.Errorf("invalid fixtures: %w", err)
		}
		s, err := store.New(seed)
		if err != nil {
			return fmt.Errorf("invalid fixtures: %w", err)
		}

		source := path
		if source == "" {
			source = "built-in sample data"
		}
		counts := s.Counts()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: ok\n", source)
		fmt.Fprintf(out, "  concepts: %d\n", counts.Concepts)
		fmt.Fprintf(out, "  folders:  %d\n", counts.Folders)
		fmt.Fprintf(out, "  notes:    %d\n", counts.Notes)
		fmt.Fprintf(out, "  settings: %t\n", counts.Settings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
}
