package met

import (
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cell patterns for the Vaisala transmitter output: temperature in C,
// relative humidity in %, pressure in hPa.
var (
	vaisalaTempRe  = regexp.MustCompile(`Ta=(-?\d+(?:\.\d+)?)C`)
	vaisalaHumidRe = regexp.MustCompile(`Ua=(-?\d+(?:\.\d+)?)P`)
	vaisalaPresRe  = regexp.MustCompile(`Pa=(-?\d+(?:\.\d+)?)H`)
)

// VaisalaSource reads the logger export format: a header naming the
// YYYYMMDD, HH:MM, Temperature, Humidity, and Pressure columns followed by
// rows like
//
//	20230826,16:15,0R2,Ta=26.8C,Ua=39.3P,Pa=972.7H
//
// Rows containing '#' are warm-up junk emitted before the sensor settles
// and are skipped. Timestamps carry no timezone; UTCOffset gives it in
// hours, and when nil the window's target-time offset is borrowed.
type VaisalaSource struct {
	File      string   `json:"file"`
	UTCOffset *float64 `json:"utc_offset,omitempty"`
}

func (s *VaisalaSource) Describe() string {
	if s.UTCOffset != nil {
		return fmt.Sprintf("Vaisala V1 (file %s, UTC%+.1f)", s.File, *s.UTCOffset)
	}
	return fmt.Sprintf("Vaisala V1 (file %s)", s.File)
}

func (s *VaisalaSource) Read(_ context.Context, win Window) ([]Observation, error) {
	loc, err := s.location(win)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.File)
	if err != nil {
		return nil, fmt.Errorf("opening Vaisala met file: %w", err)
	}

	obs, err := readVaisala(string(data), loc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Describe(), err)
	}
	return obs, nil
}

func (s *VaisalaSource) location(win Window) (*time.Location, error) {
	if s.UTCOffset == nil {
		return win.Location()
	}
	hours := *s.UTCOffset
	if hours <= -24 || hours >= 24 {
		return nil, fmt.Errorf("utc_offset %+.2f is outside the allowed range (-24 to +24)", hours)
	}
	return time.FixedZone("", int(math.Round(hours*3600))), nil
}

// vaisalaColumns maps the header names to their indices.
type vaisalaColumns struct {
	date, clock, temp, humid, pres int
}

func readVaisala(contents string, loc *time.Location) ([]Observation, error) {
	lines := strings.Split(strings.ReplaceAll(contents, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("file is missing its header line")
	}

	cols, err := vaisalaHeader(strings.Split(lines[0], ","))
	if err != nil {
		return nil, err
	}

	var obs []Observation
	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Junk lines like "Ta=0.0#" appear at the start of a recording.
		if strings.Contains(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")

		t, err := vaisalaTime(parts, cols, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		temp, err := vaisalaValue(parts, cols.temp, vaisalaTempRe, "Temperature")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		humid, err := vaisalaValue(parts, cols.humid, vaisalaHumidRe, "Humidity")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}
		pres, err := vaisalaValue(parts, cols.pres, vaisalaPresRe, "Pressure")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}

		obs = append(obs, Observation{
			Time:        t,
			Pressure:    pres,
			Temperature: &temp,
			Humidity:    &humid,
		})
	}

	return obs, nil
}

func vaisalaHeader(header []string) (vaisalaColumns, error) {
	cols := vaisalaColumns{date: -1, clock: -1, temp: -1, humid: -1, pres: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "YYYYMMDD":
			cols.date = i
		case "HH:MM":
			cols.clock = i
		case "Temperature":
			cols.temp = i
		case "Humidity":
			cols.humid = i
		case "Pressure":
			cols.pres = i
		}
	}

	var missing []string
	for _, c := range []struct {
		idx  int
		name string
	}{
		{cols.date, "YYYYMMDD"},
		{cols.clock, "HH:MM"},
		{cols.temp, "Temperature"},
		{cols.humid, "Humidity"},
		{cols.pres, "Pressure"},
	} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("header is missing fields: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func vaisalaTime(parts []string, cols vaisalaColumns, loc *time.Location) (time.Time, error) {
	if cols.date >= len(parts) {
		return time.Time{}, fmt.Errorf("line is missing the YYYYMMDD column")
	}
	if cols.clock >= len(parts) {
		return time.Time{}, fmt.Errorf("line is missing the HH:MM column")
	}
	dateStr := strings.TrimSpace(parts[cols.date])
	clockStr := strings.TrimSpace(parts[cols.clock])

	t, err := time.ParseInLocation("20060102 15:04", dateStr+" "+clockStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date/time %q %q: %w", dateStr, clockStr, err)
	}
	return t, nil
}

func vaisalaValue(parts []string, idx int, re *regexp.Regexp, name string) (float64, error) {
	if idx >= len(parts) {
		return 0, fmt.Errorf("line is missing the %s column", name)
	}
	m := re.FindStringSubmatch(parts[idx])
	if m == nil {
		return 0, fmt.Errorf("%s column %q does not match pattern %s", name, parts[idx], re.String())
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s value %q: %w", name, m[1], err)
	}
	return v, nil
}
