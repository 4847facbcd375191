// Package cli defines the metkit command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "metkit",
	Short: "metkit - meteorological observation fixtures and ingestion",
	Long: `metkit reads surface meteorology from station file formats, external
scripts, and databases, and emits it as newline-delimited JSON observations.

It also generates the canonical observation fixture set, interpolates
observations to instrument shot times, and can serve observations over HTTP.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("metkit %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command under the given context, which long-running
// commands use for graceful shutdown.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
