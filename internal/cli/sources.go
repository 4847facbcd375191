package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/met"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the supported met source types",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range met.SourceTypes() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", s.Type, s.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
