package cli

import (
	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/met"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Emit the canonical four-record observation fixture as NDJSON",
	Long: `Emit the fixed four-record observation set on stdout, one JSON object
per line. The records start at 2025-03-01T12:00:00 UTC, are spaced three
hours apart, and exercise every field-presence combination a consumer has
to handle: pressure only, with temperature, with humidity, and with both.

The output is deterministic; re-running produces byte-identical lines.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return met.WriteFixture(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(fixtureCmd)
}
