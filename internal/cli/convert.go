package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/met"
	"github.com/atmoskit/metkit/internal/observability"
)

var (
	convertSource string
	convertOut    string
	convertStart  string
	convertEnd    string
	convertDate   string
	convertSite   string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Read a met source and emit its observations as NDJSON",
	Long: `Read the met source described by a config JSON file and write its
observations as newline-delimited JSON, to stdout or to a file.

The source path may contain {DATE} and {SITE_ID} placeholders, resolved
with --date and --site. Sources whose files carry no timezone, and script
sources that substitute the time span into their arguments, need
--start/--end.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveSourcePath(convertSource, convertDate, convertSite)
		if err != nil {
			return err
		}

		source, err := met.LoadSource(path)
		if err != nil {
			return err
		}

		win, err := windowFromFlags(convertStart, convertEnd)
		if err != nil {
			return err
		}

		obs, err := source.Read(cmd.Context(), win)
		if err != nil {
			err = fmt.Errorf("reading %s: %w", source.Describe(), err)
			recordFailure("source.read", err)
			return err
		}

		out := cmd.OutOrStdout()
		if convertOut != "" {
			f, err := os.Create(convertOut)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := met.WriteNDJSON(out, obs); err != nil {
			return err
		}

		return observability.Record(eventLog(), "INFO", "source.read", "converted met source", map[string]any{
			"source": source.Describe(),
			"count":  len(obs),
		})
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertSource, "source", "s", "", "met source config JSON (may contain {DATE}/{SITE_ID})")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "write NDJSON to this file instead of stdout")
	convertCmd.Flags().StringVar(&convertStart, "start", "", "start of the target time window")
	convertCmd.Flags().StringVar(&convertEnd, "end", "", "end of the target time window")
	convertCmd.Flags().StringVar(&convertDate, "date", "", "date substituted for {DATE} (YYYY-MM-DD, default today)")
	convertCmd.Flags().StringVar(&convertSite, "site", "", "site ID substituted for {SITE_ID}")
	rootCmd.AddCommand(convertCmd)
}
