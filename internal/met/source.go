package met

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Source type tags accepted in source config files.
const (
	TypeLegacyFileV1 = "LegacyFileV1"
	TypeJplVaisalaV1 = "JplVaisalaV1"
	TypeCitCsvV1     = "CitCsvV1"
	TypeExtScriptV1  = "ExtScriptV1"
	TypePostgresV1   = "PostgresV1"
)

// Reader fetches observations from one met source. The window carries the
// target times the caller intends to match observations against; sources
// that do not need it ignore it.
type Reader interface {
	// Read returns the source's observations in file (or query) order.
	Read(ctx context.Context, win Window) ([]Observation, error)
	// Describe returns a short human-readable label for error and log messages.
	Describe() string
}

// SourceTypes lists the supported source type tags with one-line
// descriptions, in a stable order.
func SourceTypes() []struct{ Type, Description string } {
	return []struct{ Type, Description string }{
		{TypeLegacyFileV1, "comma-separated legacy station file (# comments, Pout/Tout/RH columns)"},
		{TypeJplVaisalaV1, "Vaisala logger export (Ta=..C, Ua=..P, Pa=..H cells)"},
		{TypeCitCsvV1, "Caltech weather-station CSV downloads, one file per quantity"},
		{TypeExtScriptV1, "external program printing observations as NDJSON on stdout"},
		{TypePostgresV1, "PostgreSQL table of observations"},
	}
}

// UnknownSourceTypeError is returned when a config file carries a type tag
// that no reader handles.
type UnknownSourceTypeError struct {
	Type string
}

func (e *UnknownSourceTypeError) Error() string {
	return fmt.Sprintf("unknown met source type %q", e.Type)
}

// LoadSource reads a source config JSON file and returns the reader it
// describes. Relative paths inside the config are resolved against the
// directory containing the config file, so a config can travel with its
// data files.
func LoadSource(configPath string) (Reader, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading met source config: %w", err)
	}

	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decoding met source config %s: %w", configPath, err)
	}

	baseDir := filepath.Dir(configPath)

	switch tag.Type {
	case TypeLegacyFileV1:
		var src LegacySource
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decoding %s config %s: %w", tag.Type, configPath, err)
		}
		if src.File == "" {
			return nil, fmt.Errorf("%s config %s: \"file\" is required", tag.Type, configPath)
		}
		src.File = resolveAgainst(baseDir, src.File)
		return &src, nil

	case TypeJplVaisalaV1:
		var src VaisalaSource
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decoding %s config %s: %w", tag.Type, configPath, err)
		}
		if src.File == "" {
			return nil, fmt.Errorf("%s config %s: \"file\" is required", tag.Type, configPath)
		}
		src.File = resolveAgainst(baseDir, src.File)
		return &src, nil

	case TypeCitCsvV1:
		var src CitCSVSource
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decoding %s config %s: %w", tag.Type, configPath, err)
		}
		if src.PresFile == "" {
			return nil, fmt.Errorf("%s config %s: \"pres_file\" is required", tag.Type, configPath)
		}
		src.PresFile = resolveAgainst(baseDir, src.PresFile)
		if src.TempFile != "" {
			src.TempFile = resolveAgainst(baseDir, src.TempFile)
		}
		if src.HumidFile != "" {
			src.HumidFile = resolveAgainst(baseDir, src.HumidFile)
		}
		return &src, nil

	case TypeExtScriptV1:
		var src ScriptSource
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decoding %s config %s: %w", tag.Type, configPath, err)
		}
		if src.Script == "" {
			return nil, fmt.Errorf("%s config %s: \"script\" is required", tag.Type, configPath)
		}
		if src.WorkingDir == "" {
			src.WorkingDir = "."
		}
		src.WorkingDir = resolveAgainst(baseDir, src.WorkingDir)
		return &src, nil

	case TypePostgresV1:
		var src PostgresSource
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decoding %s config %s: %w", tag.Type, configPath, err)
		}
		if src.DatabaseURL == "" {
			src.DatabaseURL = os.Getenv("DATABASE_URL")
		}
		if src.DatabaseURL == "" {
			return nil, fmt.Errorf("%s config %s: \"database_url\" or DATABASE_URL is required", tag.Type, configPath)
		}
		if src.Table == "" {
			src.Table = defaultObservationsTable
		}
		if err := validTableName(src.Table); err != nil {
			return nil, fmt.Errorf("%s config %s: %w", tag.Type, configPath, err)
		}
		return &src, nil

	case "":
		return nil, fmt.Errorf("met source config %s has no \"type\" field", configPath)

	default:
		return nil, &UnknownSourceTypeError{Type: tag.Type}
	}
}

// resolveAgainst interprets a relative path as relative to the config
// file's directory, mirroring how the configs reference sibling data files.
func resolveAgainst(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
