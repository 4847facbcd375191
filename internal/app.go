// Package internal provides the App struct that wires the metkit services
// together and hands them to the CLI layer.
package internal

import (
	"github.com/atmoskit/metkit/internal/cli"
	"github.com/atmoskit/metkit/internal/config"
)

// App holds the configuration shared by the metkit commands.
type App struct {
	BasePath string
	Config   *config.Config
}

// NewApp loads configuration from basePath and wires it into the CLI
// layer. The event log is opened lazily by the commands that record
// events, so commands that only write to stdout touch no files.
func NewApp(basePath string) (*App, error) {
	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, err
	}

	cli.BasePath = basePath
	cli.Cfg = cfg

	return &App{BasePath: basePath, Config: cfg}, nil
}
