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

// matlabUnixEpoch is 00:00 1 Jan 1970 expressed as a Matlab date number.
// Date numbers count days, so each following day adds exactly 1.
const matlabUnixEpoch = 719529.0

// LegacySource reads comma-separated legacy station files. The only
// recognized comment character is '#'. Time is given by one of three column
// sets, preferred in this order:
//
//  1. CompSrlDate: a Matlab date number in the station's local time.
//  2. CompDate + CompTime: "2006/01/02" and "15:04:05" in local time.
//  3. UTCDate + UTCTime: the same layouts, in UTC.
//
// The local-time variants borrow the UTC offset of the window's target
// times. Value columns are Pout (pressure, required), Tout (temperature),
// and RH (humidity); any other columns are ignored.
type LegacySource struct {
	File string `json:"file"`
}

func (s *LegacySource) Describe() string {
	return fmt.Sprintf("legacy V1 (file %s)", s.File)
}

func (s *LegacySource) Read(_ context.Context, win Window) ([]Observation, error) {
	f, err := os.Open(s.File)
	if err != nil {
		return nil, fmt.Errorf("opening legacy met file: %w", err)
	}
	defer f.Close()

	obs, err := readLegacy(f, win)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Describe(), err)
	}
	return obs, nil
}

// legacyColumns maps the header names we care about to their indices.
type legacyColumns struct {
	compSrlDate int
	compDate    int
	compTime    int
	utcDate     int
	utcTime     int
	pout        int
	tout        int
	rh          int
}

func readLegacy(r io.Reader, win Window) ([]Observation, error) {
	rdr := csv.NewReader(r)
	rdr.Comment = '#'
	rdr.TrimLeadingSpace = true
	rdr.FieldsPerRecord = -1

	header, err := rdr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file has no header line")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header line: %w", err)
	}

	cols := legacyColumns{compSrlDate: -1, compDate: -1, compTime: -1, utcDate: -1, utcTime: -1, pout: -1, tout: -1, rh: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "CompSrlDate":
			cols.compSrlDate = i
		case "CompDate":
			cols.compDate = i
		case "CompTime":
			cols.compTime = i
		case "UTCDate":
			cols.utcDate = i
		case "UTCTime":
			cols.utcTime = i
		case "Pout":
			cols.pout = i
		case "Tout":
			cols.tout = i
		case "RH":
			cols.rh = i
		}
	}
	if cols.pout < 0 {
		return nil, fmt.Errorf("header is missing the required Pout column")
	}

	// The local-time columns only make sense if the target times pin down a
	// single UTC offset. Resolve it lazily so UTC-only files work without a
	// window.
	var loc *time.Location
	needLocal := cols.compSrlDate >= 0 || (cols.compDate >= 0 && cols.compTime >= 0)
	if needLocal {
		loc, err = win.Location()
		if err != nil {
			return nil, err
		}
	}

	var obs []Observation
	line := 1
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parsing data line %d: %w", line, err)
		}

		t, err := legacyRowTime(row, cols, loc)
		if err != nil {
			return nil, fmt.Errorf("data line %d: %w", line, err)
		}

		pressure, err := legacyFloat(row, cols.pout, "Pout")
		if err != nil {
			return nil, fmt.Errorf("data line %d: %w", line, err)
		}
		if pressure == nil {
			return nil, fmt.Errorf("data line %d: Pout value is empty", line)
		}

		temperature, err := legacyFloat(row, cols.tout, "Tout")
		if err != nil {
			return nil, fmt.Errorf("data line %d: %w", line, err)
		}
		humidity, err := legacyFloat(row, cols.rh, "RH")
		if err != nil {
			return nil, fmt.Errorf("data line %d: %w", line, err)
		}

		obs = append(obs, Observation{
			Time:        t,
			Pressure:    *pressure,
			Temperature: temperature,
			Humidity:    humidity,
		})
	}

	return obs, nil
}

// legacyRowTime resolves a row's timestamp using the column precedence
// CompSrlDate > CompDate+CompTime > UTCDate+UTCTime. Having one of CompDate
// and CompTime but not both is treated as a mistake rather than falling
// through to the UTC columns.
func legacyRowTime(row []string, cols legacyColumns, loc *time.Location) (time.Time, error) {
	if v := cell(row, cols.compSrlDate); v != "" {
		datenum, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing CompSrlDate %q: %w", v, err)
		}
		return matlabTime(datenum, loc), nil
	}

	compDate, compTime := cell(row, cols.compDate), cell(row, cols.compTime)
	if compDate != "" && compTime != "" {
		t, err := time.ParseInLocation("2006/01/02 15:04:05", compDate+" "+compTime, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing CompDate/CompTime %q %q: %w", compDate, compTime, err)
		}
		return t, nil
	}
	if compDate != "" || compTime != "" {
		return time.Time{}, fmt.Errorf("one of CompDate and CompTime was given, but not both")
	}

	utcDate, utcTime := cell(row, cols.utcDate), cell(row, cols.utcTime)
	if utcDate != "" && utcTime != "" {
		t, err := time.Parse("2006/01/02 15:04:05", utcDate+" "+utcTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing UTCDate/UTCTime %q %q: %w", utcDate, utcTime, err)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("none of CompSrlDate, CompDate + CompTime, or UTCDate + UTCTime were given")
}

// matlabTime converts a Matlab date number into a wall-clock time carrying
// the given UTC offset. The date number is interpreted as local time at the
// station, so the clock reading is kept and only the offset attached.
func matlabTime(datenum float64, loc *time.Location) time.Time {
	sec := int64((datenum - matlabUnixEpoch) * 24 * 3600)
	t := time.Unix(sec, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// legacyFloat parses an optional numeric column, returning nil when the
// column is absent or the cell is empty.
func legacyFloat(row []string, i int, name string) (*float64, error) {
	v := cell(row, i)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q: %w", name, v, err)
	}
	return &f, nil
}
