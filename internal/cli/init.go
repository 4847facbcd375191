package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/atmoskit/metkit/internal/config"
)

// sampleSourceJSON is a working ExtScriptV1 source config pointing at a
// script the user supplies. It doubles as format documentation.
const sampleSourceJSON = `{
  "type": "ExtScriptV1",
  "script": "./get_met.py",
  "args": ["--start={FIRST_OBS_TIME}", "--end={LAST_OBS_TIME}"]
}
`

const sampleCoordsJSON = `{
  "latitude": 34.1362,
  "longitude": -118.1269,
  "altitude": 237.0
}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the metkit data directory and starter config files",
	Long: `Create the metkit data directory with a default .metkit.yaml, a sample
met source config, and a sample coordinates file. Files that already exist
are left alone, so re-running is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := BasePath
		if base == "" {
			base = config.ResolveBasePath()
		}

		if err := os.MkdirAll(base, 0o755); err != nil {
			return fmt.Errorf("creating data directory %s: %w", base, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "data directory %s\n", base)

		cfgYAML, err := defaultConfigYAML()
		if err != nil {
			return err
		}

		steps := []struct {
			path    string
			content string
		}{
			{filepath.Join(base, config.ConfigFileName+".yaml"), cfgYAML},
			{filepath.Join(base, "met_source.json"), sampleSourceJSON},
			{filepath.Join(base, "coordinates.json"), sampleCoordsJSON},
		}

		for _, step := range steps {
			created, err := createIfMissing(step.path, step.content)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", step.path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "kept    %s\n", step.path)
			}
		}

		return nil
	},
}

// defaultConfigYAML renders the default settings as YAML, with the sample
// files wired in so a fresh install works end to end.
func defaultConfigYAML() (string, error) {
	cfg := map[string]any{
		"site_id":     "xx",
		"source":      "met_source.json",
		"coords_file": "coordinates.json",
		"event_log":   ".metkit_events.jsonl",
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("rendering default config: %w", err)
	}
	return string(out), nil
}

// createIfMissing writes content to path unless the file already exists.
func createIfMissing(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
