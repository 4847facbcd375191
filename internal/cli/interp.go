package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/met"
	"github.com/atmoskit/metkit/internal/observability"
)

var (
	interpSource    string
	interpAt        []string
	interpTimesFile string
	interpDate      string
	interpSite      string
)

var interpCmd = &cobra.Command{
	Use:   "interp",
	Short: "Interpolate a met source to target times",
	Long: `Read a met source and interpolate its observations to the given target
times (nearest sample per quantity), emitting one NDJSON observation per
target. Targets outside the observed time span are an error.

Target times come from repeated --at flags and/or a --times-file with one
timestamp per line. All targets must share a single UTC offset.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := collectTargets(interpAt, interpTimesFile)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("no target times given: use --at or --times-file")
		}

		win, err := met.NewWindow(targets...)
		if err != nil {
			return err
		}

		path, err := resolveSourcePath(interpSource, interpDate, interpSite)
		if err != nil {
			return err
		}
		source, err := met.LoadSource(path)
		if err != nil {
			return err
		}

		obs, err := source.Read(cmd.Context(), win)
		if err != nil {
			err = fmt.Errorf("reading %s: %w", source.Describe(), err)
			recordFailure("source.read", err)
			return err
		}

		interpolated, err := met.InterpolateTo(obs, targets)
		if err != nil {
			recordFailure("source.interpolated", err)
			return err
		}

		if err := met.WriteNDJSON(cmd.OutOrStdout(), interpolated); err != nil {
			return err
		}

		return observability.Record(eventLog(), "INFO", "source.interpolated", "interpolated met source", map[string]any{
			"source":  source.Describe(),
			"targets": len(targets),
		})
	},
}

// collectTargets merges --at values and the lines of --times-file.
func collectTargets(at []string, timesFile string) ([]time.Time, error) {
	var targets []time.Time
	for _, s := range at {
		t, err := parseTimeArg(s)
		if err != nil {
			return nil, fmt.Errorf("parsing --at: %w", err)
		}
		targets = append(targets, t)
	}

	if timesFile != "" {
		f, err := os.Open(timesFile)
		if err != nil {
			return nil, fmt.Errorf("opening times file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			s := strings.TrimSpace(scanner.Text())
			if s == "" || strings.HasPrefix(s, "#") {
				continue
			}
			t, err := parseTimeArg(s)
			if err != nil {
				return nil, fmt.Errorf("times file line %d: %w", line, err)
			}
			targets = append(targets, t)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading times file: %w", err)
		}
	}

	return targets, nil
}

func init() {
	interpCmd.Flags().StringVarP(&interpSource, "source", "s", "", "met source config JSON (may contain {DATE}/{SITE_ID})")
	interpCmd.Flags().StringArrayVar(&interpAt, "at", nil, "target time (repeatable)")
	interpCmd.Flags().StringVar(&interpTimesFile, "times-file", "", "file with one target time per line")
	interpCmd.Flags().StringVar(&interpDate, "date", "", "date substituted for {DATE} (YYYY-MM-DD, default today)")
	interpCmd.Flags().StringVar(&interpSite, "site", "", "site ID substituted for {SITE_ID}")
	rootCmd.AddCommand(interpCmd)
}
