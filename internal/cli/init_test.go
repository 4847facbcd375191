package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atmoskit/metkit/internal/config"
)

func TestInitCommand_CreatesFiles(t *testing.T) {
	origBase := BasePath
	defer func() { BasePath = origBase }()
	BasePath = t.TempDir()

	out, err := runCommand(t, "init")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{config.ConfigFileName + ".yaml", "met_source.json", "coordinates.json"} {
		path := filepath.Join(BasePath, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
		if !strings.Contains(out, "created "+path) {
			t.Errorf("output should report creating %s, got:\n%s", path, out)
		}
	}

	// The generated config must load cleanly.
	cfg, err := config.Load(BasePath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.SourcePath != "met_source.json" {
		t.Errorf("expected source met_source.json, got %s", cfg.SourcePath)
	}
	if cfg.CoordsFile != "coordinates.json" {
		t.Errorf("expected coords_file coordinates.json, got %s", cfg.CoordsFile)
	}
}

func TestInitCommand_Idempotent(t *testing.T) {
	origBase := BasePath
	defer func() { BasePath = origBase }()
	BasePath = t.TempDir()

	if _, err := runCommand(t, "init"); err != nil {
		t.Fatalf("unexpected error on first run: %v", err)
	}

	// Scribble on a file to prove reruns do not overwrite.
	marker := filepath.Join(BasePath, "met_source.json")
	if err := os.WriteFile(marker, []byte("{\"type\": \"LegacyFileV1\", \"file\": \"mine.txt\"}"), 0o644); err != nil {
		t.Fatalf("writing marker: %v", err)
	}

	out, err := runCommand(t, "init")
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if !strings.Contains(out, "kept    "+marker) {
		t.Errorf("output should report keeping %s, got:\n%s", marker, out)
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("reading marker: %v", err)
	}
	if !strings.Contains(string(data), "mine.txt") {
		t.Error("rerunning init overwrote an existing file")
	}
}
