// Package config loads metkit settings: a YAML file in the data directory
// for tool defaults, plus environment variables (optionally from .env) for
// the server, which is usually deployed where env-driven config is the norm.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigFileName is the YAML settings file looked up in the data directory.
const ConfigFileName = ".metkit"

// Config holds tool-wide settings read from .metkit.yaml.
type Config struct {
	// SiteID is the two-letter station code substituted into path templates.
	SiteID string
	// SourcePath is the default met source config used when -s is omitted.
	// It may contain {DATE} and {SITE_ID} placeholders.
	SourcePath string
	// CoordsFile points at the site coordinate JSON, if any.
	CoordsFile string
	// EventLogName is the JSONL event log file name inside the data dir.
	EventLogName string
}

func defaults() *Config {
	return &Config{
		SiteID:       "xx",
		EventLogName: ".metkit_events.jsonl",
	}
}

// Load reads .metkit.yaml from basePath. A missing file returns the
// defaults; a malformed one is an error.
func Load(basePath string) (*Config, error) {
	cfg := defaults()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	v.SetDefault("site_id", cfg.SiteID)
	v.SetDefault("source", cfg.SourcePath)
	v.SetDefault("coords_file", cfg.CoordsFile)
	v.SetDefault("event_log", cfg.EventLogName)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
	}

	cfg.SiteID = v.GetString("site_id")
	cfg.SourcePath = v.GetString("source")
	cfg.CoordsFile = v.GetString("coords_file")
	cfg.EventLogName = v.GetString("event_log")

	return cfg, nil
}

// ResolveBasePath picks the metkit data directory: METKIT_HOME when set,
// the current directory when it already holds a config file, otherwise
// ~/.metkit.
func ResolveBasePath() string {
	if p := os.Getenv("METKIT_HOME"); p != "" {
		return p
	}
	if _, err := os.Stat(ConfigFileName + ".yaml"); err == nil {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".metkit")
}

// ServerConfig holds environment-driven settings for the HTTP API.
type ServerConfig struct {
	Addr        string
	BearerToken string
	DatabaseURL string
}

// LoadServerEnv reads server settings from environment variables,
// optionally seeded from a .env file.
func LoadServerEnv() ServerConfig {
	_ = godotenv.Load() // ignore missing file

	cfg := ServerConfig{Addr: ":8080"}
	if addr := os.Getenv("METKIT_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.BearerToken = os.Getenv("METKIT_BEARER_TOKEN")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	return cfg
}
