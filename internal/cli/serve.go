package cli

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/config"
	"github.com/atmoskit/metkit/internal/coords"
	"github.com/atmoskit/metkit/internal/met"
	"github.com/atmoskit/metkit/internal/observability"
	"github.com/atmoskit/metkit/internal/server"
)

var (
	serveSource string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve observations from a met source over HTTP",
	Long: `Serve the observations of a met source over a small HTTP API:

  GET /healthz                     liveness probe
  GET /api/v1/observations         JSON envelope with all observations
  GET /api/v1/observations.ndjson  NDJSON stream
  GET /api/v1/site                 site coordinates, when configured
  GET /metrics                     Prometheus metrics

Listen address and bearer token come from METKIT_ADDR and
METKIT_BEARER_TOKEN (optionally via .env); --addr overrides the former.
The server shuts down gracefully on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srvCfg := config.LoadServerEnv()
		if serveAddr != "" {
			srvCfg.Addr = serveAddr
		}

		path := serveSource
		if path == "" && Cfg != nil {
			path = Cfg.SourcePath
		}
		if path == "" {
			return fmt.Errorf("no met source given: pass --source or set \"source\" in the config file")
		}
		if !filepath.IsAbs(path) && BasePath != "" {
			path = filepath.Join(BasePath, path)
		}

		source, err := met.LoadSource(path)
		if err != nil {
			return err
		}

		var site *coords.Source
		if Cfg != nil && Cfg.CoordsFile != "" {
			coordsPath := Cfg.CoordsFile
			if !filepath.IsAbs(coordsPath) && BasePath != "" {
				coordsPath = filepath.Join(BasePath, coordsPath)
			}
			site, err = coords.Load(coordsPath)
			if err != nil {
				return err
			}
		}

		srv := server.New(srvCfg, source, site)

		if err := observability.Record(eventLog(), "INFO", "serve.started", "HTTP API started", map[string]any{
			"addr":   srvCfg.Addr,
			"source": source.Describe(),
		}); err != nil {
			log.Printf("warning: recording serve start: %v", err)
		}

		log.Printf("serving %s on %s", source.Describe(), srvCfg.Addr)
		if err := srv.Run(cmd.Context()); err != nil {
			recordFailure("serve.started", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveSource, "source", "s", "", "met source config JSON to serve")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides METKIT_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
