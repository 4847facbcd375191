// Package met holds the meteorological observation model, the NDJSON codec
// used on every tool boundary, and the readers for the supported met source
// formats.
package met

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// TimeLayout is the wire format for observation timestamps: an ISO-8601
// style local time followed by a numeric UTC offset, e.g.
// "2025-03-01T12:00:00+0000".
const TimeLayout = "2006-01-02T15:04:05-0700"

// parseLayouts are the accepted timestamp encodings, tried in order.
// RFC 3339 covers both "Z" and colon-separated offsets.
var parseLayouts = []string{TimeLayout, time.RFC3339}

// Observation is a single set of surface meteorology measurements taken at
// one instant. Pressure is always present; temperature and humidity are
// optional because many station exports omit one or both. Field presence is
// preserved exactly through JSON round trips.
type Observation struct {
	// Time of the measurement, which must carry an explicit UTC offset.
	Time time.Time

	// Pressure in hPa.
	Pressure float64

	// Temperature in degrees Celsius, nil when not measured.
	Temperature *float64

	// Humidity as relative humidity in percent (0-100), nil when not measured.
	Humidity *float64
}

// wireObservation is the JSON shape of an Observation. Pressure is a pointer
// so the decoder can tell a missing key from an explicit zero; the optional
// quantities use pointers so that an explicit zero survives encoding.
type wireObservation struct {
	Datetime    string   `json:"datetime"`
	Pressure    *float64 `json:"pressure"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
}

// MarshalJSON encodes the observation with the datetime rendered in
// TimeLayout, preserving which optional fields are present.
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireObservation{
		Datetime:    o.Time.Format(TimeLayout),
		Pressure:    &o.Pressure,
		Temperature: o.Temperature,
		Humidity:    o.Humidity,
	})
}

// UnmarshalJSON decodes an observation, accepting TimeLayout, RFC 3339
// offsets, and the "Z" suffix for the datetime field.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var w wireObservation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Datetime == "" {
		return fmt.Errorf("observation is missing the datetime field")
	}
	if w.Pressure == nil {
		return fmt.Errorf("observation is missing the pressure field")
	}

	var (
		t   time.Time
		err error
	)
	for _, layout := range parseLayouts {
		t, err = time.Parse(layout, w.Datetime)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("parsing datetime %q: %w", w.Datetime, err)
	}

	o.Time = t
	o.Pressure = *w.Pressure
	o.Temperature = w.Temperature
	o.Humidity = w.Humidity
	return nil
}

// EqualWithin reports whether two observations have the same timestamp, the
// same field presence, and values that agree within tol.
func (o Observation) EqualWithin(other Observation, tol float64) bool {
	if !o.Time.Equal(other.Time) {
		return false
	}
	if math.Abs(o.Pressure-other.Pressure) > tol {
		return false
	}
	if !optionalClose(o.Temperature, other.Temperature, tol) {
		return false
	}
	return optionalClose(o.Humidity, other.Humidity, tol)
}

func optionalClose(a, b *float64, tol float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return math.Abs(*a-*b) <= tol
}

// WriteNDJSON writes each observation as one JSON object per line.
func WriteNDJSON(w io.Writer, obs []Observation) error {
	for _, o := range obs {
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("marshalling observation at %s: %w", o.Time.Format(TimeLayout), err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing observation: %w", err)
		}
	}
	return nil
}

// ReadNDJSON parses newline-delimited observation JSON. Blank lines are
// skipped; a malformed line is an error that names the offending entry.
// Carriage returns are stripped so CR+LF output from scripts parses cleanly.
func ReadNDJSON(r io.Reader) ([]Observation, error) {
	var obs []Observation
	scanner := bufio.NewScanner(r)
	entry := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry++
		var o Observation
		if err := json.Unmarshal([]byte(line), &o); err != nil {
			return nil, fmt.Errorf("parsing observation entry %d (%q): %w", entry, line, err)
		}
		obs = append(obs, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning observations: %w", err)
	}
	return obs, nil
}

// Window is the span of target times a source is being read for. Sources
// whose files omit timezone information borrow the window's UTC offset, and
// script sources substitute the bounds into their arguments.
type Window struct {
	First time.Time
	Last  time.Time
}

// IsZero reports whether no window was provided.
func (w Window) IsZero() bool {
	return w.First.IsZero() && w.Last.IsZero()
}

// NewWindow builds a window spanning the earliest and latest of the given
// times. All times must share one UTC offset; files without timezone
// information are matched to target times by assuming they use the same
// offset, which is only well defined when that offset is unique.
func NewWindow(times ...time.Time) (Window, error) {
	if len(times) == 0 {
		return Window{}, nil
	}
	first, last := times[0], times[0]
	_, ref := times[0].Zone()
	for _, t := range times[1:] {
		if _, off := t.Zone(); off != ref {
			return Window{}, fmt.Errorf("target times use more than one UTC offset")
		}
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return Window{First: first, Last: last}, nil
}

// Location returns the fixed UTC offset shared by the window bounds. It
// fails for a zero window, since then there is no offset to borrow.
func (w Window) Location() (*time.Location, error) {
	if w.IsZero() {
		return nil, fmt.Errorf("no target times given, so the file's UTC offset cannot be inferred")
	}
	name, off := w.First.Zone()
	if _, lastOff := w.Last.Zone(); lastOff != off {
		return nil, fmt.Errorf("target times use more than one UTC offset")
	}
	if name == "" || name == "UTC" {
		return time.FixedZone("", off), nil
	}
	return time.FixedZone(name, off), nil
}
