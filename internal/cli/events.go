package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/observability"
)

var (
	eventsJSON   bool
	eventsSince  string
	eventsType   string
	eventsStats  bool
	eventsAlerts bool
	eventsNotify bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Display recent events from the ingestion log",
	Long: `Display events recorded by convert, interp, and serve runs.

By default the last 7 days are shown; --since accepts values like "30d"
or "24h". --stats aggregates the events instead of listing them, and
--alerts evaluates ingestion health (stale sources, recent errors).
With --notify, triggered alerts are also posted to the webhook named
by METKIT_WEBHOOK_URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := eventLog()
		if log == nil {
			return fmt.Errorf("event log not available; run \"metkit init\" first")
		}

		if eventsAlerts {
			return runEventAlerts(cmd, log)
		}
		if eventsStats {
			return runEventStats(cmd, log)
		}

		sinceTime, err := parseSinceDuration(eventsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		events, err := log.Read(observability.EventFilter{
			Since: &sinceTime,
			Type:  eventsType,
		})
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}

		if eventsJSON {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting events as JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events recorded.")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %-6s %-22s %s\n", "TIME", "LEVEL", "TYPE", "MESSAGE")
		for _, e := range events {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %-6s %-22s %s\n",
				e.Time.Format("2006-01-02 15:04:05"), e.Level, e.Type, e.Message)
		}
		return nil
	},
}

func runEventStats(cmd *cobra.Command, log observability.EventLog) error {
	sinceTime, err := parseSinceDuration(eventsSince)
	if err != nil {
		return fmt.Errorf("parsing --since: %w", err)
	}

	m, err := observability.NewMetricsCalculator(log).Calculate(sinceTime)
	if err != nil {
		return err
	}

	if eventsJSON {
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting metrics as JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Events:         %d\n", m.EventCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Sources read:   %d\n", m.SourcesRead)
	fmt.Fprintf(cmd.OutOrStdout(), "Interpolations: %d\n", m.Interpolations)
	fmt.Fprintf(cmd.OutOrStdout(), "Serve starts:   %d\n", m.ServeStarts)
	fmt.Fprintf(cmd.OutOrStdout(), "Errors:         %d\n", m.Errors)
	if len(m.EventsByType) > 0 {
		types := make([]string, 0, len(m.EventsByType))
		for t := range m.EventsByType {
			types = append(types, t)
		}
		sort.Strings(types)
		fmt.Fprintln(cmd.OutOrStdout(), "By type:")
		for _, t := range types {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-22s %d\n", t, m.EventsByType[t])
		}
	}
	return nil
}

func runEventAlerts(cmd *cobra.Command, log observability.EventLog) error {
	engine := observability.NewAlertEngine(log, observability.DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		return err
	}

	if eventsNotify && len(alerts) > 0 {
		url := os.Getenv("METKIT_WEBHOOK_URL")
		if url == "" {
			return fmt.Errorf("--notify requires METKIT_WEBHOOK_URL to be set")
		}
		if err := observability.NewWebhookNotifier(url).Notify(alerts); err != nil {
			return fmt.Errorf("notifying webhook: %w", err)
		}
	}

	if eventsJSON {
		data, err := json.MarshalIndent(alerts, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting alerts as JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(alerts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No alerts triggered.")
		return nil
	}

	for _, a := range alerts {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
	}
	return nil
}

// parseSinceDuration parses a human-friendly duration like "7d" or "24h"
// and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}
	return now.Add(-d), nil
}

func init() {
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "output as JSON")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", `how far back to look (e.g. "7d", "24h")`)
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "only show events of this type")
	eventsCmd.Flags().BoolVar(&eventsStats, "stats", false, "aggregate events into metrics")
	eventsCmd.Flags().BoolVar(&eventsAlerts, "alerts", false, "evaluate ingestion health alerts")
	eventsCmd.Flags().BoolVar(&eventsNotify, "notify", false, "post triggered alerts to METKIT_WEBHOOK_URL (with --alerts)")
	rootCmd.AddCommand(eventsCmd)
}
