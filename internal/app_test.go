package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atmoskit/metkit/internal/cli"
	"github.com/atmoskit/metkit/internal/config"
)

func TestNewApp_Defaults(t *testing.T) {
	dir := t.TempDir()

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if app.BasePath != dir {
		t.Errorf("expected base path %s, got %s", dir, app.BasePath)
	}
	if app.Config.SiteID != "xx" {
		t.Errorf("expected default site_id xx, got %s", app.Config.SiteID)
	}
	if cli.BasePath != dir {
		t.Errorf("CLI base path not wired, got %s", cli.BasePath)
	}
	if cli.Cfg != app.Config {
		t.Error("CLI config not wired to the loaded config")
	}
}

func TestNewApp_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := "site_id: pa\nsource: met_source.json\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName+".yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Config.SiteID != "pa" {
		t.Errorf("expected site_id pa, got %s", app.Config.SiteID)
	}
}

func TestNewApp_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName+".yaml"), []byte("site_id: [unclosed"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := NewApp(dir); err == nil {
		t.Error("expected error for a malformed config file")
	}
}
