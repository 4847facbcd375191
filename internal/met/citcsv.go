package met

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CitCSVSource reads weather-station downloads that come as one two-column
// CSV per quantity ("Time" plus the value). The pressure file is required;
// temperature and humidity files are optional but must list exactly the
// same timestamps as the pressure file. Timestamps are station-local, so
// the site code fixes the US timezone (DST included). Rows between midnight
// and 03:00 local are dropped: no data is taken then and the DST
// transitions make those hours ambiguous.
type CitCSVSource struct {
	Site      string `json:"site"`
	PresFile  string `json:"pres_file"`
	TempFile  string `json:"temp_file,omitempty"`
	HumidFile string `json:"humid_file,omitempty"`
}

func (s *CitCSVSource) Describe() string {
	return fmt.Sprintf("CIT CSV V1 (%s, pres_file = %s)", s.Site, s.PresFile)
}

func (s *CitCSVSource) Read(_ context.Context, _ Window) ([]Observation, error) {
	site, err := lookupMetSite(s.Site)
	if err != nil {
		return nil, err
	}

	times, pressures, err := readCitCSV(s.PresFile, "Pressure (mb)")
	if err != nil {
		return nil, err
	}

	var temperatures, humidities []float64
	if s.TempFile != "" {
		tTimes, vals, err := readCitCSV(s.TempFile, "Temperature")
		if err != nil {
			return nil, err
		}
		if err := checkAlignedTimes(times, tTimes, s.PresFile, s.TempFile); err != nil {
			return nil, err
		}
		temperatures = vals
	}
	if s.HumidFile != "" {
		hTimes, vals, err := readCitCSV(s.HumidFile, "Relative Humidity (%)")
		if err != nil {
			return nil, err
		}
		if err := checkAlignedTimes(times, hTimes, s.PresFile, s.HumidFile); err != nil {
			return nil, err
		}
		humidities = vals
	}

	var obs []Observation
	for i, ts := range times {
		naive, err := time.Parse("2006-01-02 15:04:05", ts)
		if err != nil {
			return nil, fmt.Errorf("parsing time %q on line %d of %s: %w", ts, i+2, s.PresFile, err)
		}
		if naive.Hour() < 3 {
			continue
		}

		t, err := site.localize(naive)
		if err != nil {
			return nil, err
		}

		o := Observation{Time: t, Pressure: pressures[i]}
		if temperatures != nil {
			o.Temperature = &temperatures[i]
		}
		if humidities != nil {
			o.Humidity = &humidities[i]
		}
		obs = append(obs, o)
	}

	return obs, nil
}

// metSite is a station whose files use local wall-clock time; standard and
// daylight offsets are given in hours east of UTC.
type metSite struct {
	code               string
	standard, daylight int
}

var metSites = map[string]metSite{
	"ci": {code: "ci", standard: -8, daylight: -7}, // Caltech
	"oc": {code: "oc", standard: -6, daylight: -5}, // Lamont
	"pa": {code: "pa", standard: -6, daylight: -5}, // Park Falls
}

func lookupMetSite(code string) (metSite, error) {
	site, ok := metSites[code]
	if !ok {
		return metSite{}, fmt.Errorf("unknown met site %q", code)
	}
	return site, nil
}

// localize attaches the site's UTC offset to a naive local timestamp,
// choosing standard or daylight time by the US DST rule.
func (s metSite) localize(naive time.Time) (time.Time, error) {
	offset := s.standard
	if isUSDaylightTime(naive) {
		offset = s.daylight
	}
	loc := time.FixedZone("", offset*3600)
	return time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, loc), nil
}

// isUSDaylightTime applies the post-2007 US rule to a naive local time:
// DST runs from 02:00 on the second Sunday of March to 02:00 on the first
// Sunday of November.
func isUSDaylightTime(naive time.Time) bool {
	year := naive.Year()
	start := nthSunday(year, time.March, 2).Add(2 * time.Hour)
	end := nthSunday(year, time.November, 1).Add(2 * time.Hour)
	return !naive.Before(start) && naive.Before(end)
}

// nthSunday returns midnight on the nth Sunday of the given month.
func nthSunday(year int, month time.Month, n int) time.Time {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (7 - int(t.Weekday())) % 7
	return t.AddDate(0, 0, offset+(n-1)*7)
}

// readCitCSV parses one two-column file, checking that the header names a
// Time column and the expected quantity.
func readCitCSV(path, wantCol string) ([]string, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rdr := csv.NewReader(f)
	rdr.FieldsPerRecord = -1

	header, err := rdr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%s is missing its header line", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("%s header has fewer than 2 columns", path)
	}
	if !strings.Contains(header[0], "Time") {
		return nil, nil, fmt.Errorf("%s column 1 does not contain %q", path, "Time")
	}
	if !strings.Contains(header[1], wantCol) {
		return nil, nil, fmt.Errorf("%s column 2 does not contain %q", path, wantCol)
	}

	var times []string
	var values []float64
	line := 1
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s line %d: %w", path, line+1, err)
		}
		line++
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("%s line %d has fewer than 2 values", path, line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing %s line %d column 2: %w", path, line, err)
		}
		times = append(times, strings.TrimSpace(row[0]))
		values = append(values, v)
	}

	return times, values, nil
}

// checkAlignedTimes verifies two files list identical timestamps row for row.
func checkAlignedTimes(main, other []string, file1, file2 string) error {
	if len(main) != len(other) {
		return fmt.Errorf("times in %s and %s do not match exactly: different numbers of times", file1, file2)
	}
	for i := range main {
		if main[i] != other[i] {
			return fmt.Errorf("times in %s and %s do not match exactly: times on line %d are different", file1, file2, i+2)
		}
	}
	return nil
}
