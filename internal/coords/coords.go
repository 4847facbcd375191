// Package coords loads the geographic coordinates of the observing site.
package coords

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Source answers where the instrument was at a given time. Only fixed
// installations are supported today; the time parameter exists so mobile
// deployments can slot in later without changing callers.
type Source struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Load reads a coordinate file, picking the parser by file extension.
// Supported formats: .json.
func Load(path string) (*Source, error) {
	switch ext := filepath.Ext(path); ext {
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported coordinate file extension %q (%s)", ext, path)
	}
}

func loadJSON(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading coordinate file: %w", err)
	}
	var s Source
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding coordinate file %s: %w", path, err)
	}
	return &s, nil
}

// CoordsAt returns latitude (south negative), longitude (west negative),
// and altitude in meters for the given time.
func (s *Source) CoordsAt(_ time.Time) (lat, lon, alt float64) {
	return s.Latitude, s.Longitude, s.Altitude
}
