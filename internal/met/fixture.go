package met

import (
	"io"
	"time"
)

// fixturePressure is the constant surface pressure used across the fixture
// set, one standard atmosphere in hPa.
const fixturePressure = 1013.25

// fixtureBase is the timestamp of the first fixture record.
var fixtureBase = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// Fixture returns the canonical four-record observation set used as sample
// input for downstream consumers. Timestamps increase by exactly three
// hours. The field-presence pattern simulates sensors dropping in and out:
// pressure only, then +temperature, then +humidity, then both.
func Fixture() []Observation {
	f := func(v float64) *float64 { return &v }
	return []Observation{
		{Time: fixtureBase, Pressure: fixturePressure},
		{Time: fixtureBase.Add(3 * time.Hour), Pressure: fixturePressure, Temperature: f(25.0)},
		{Time: fixtureBase.Add(6 * time.Hour), Pressure: fixturePressure, Humidity: f(50.0)},
		{Time: fixtureBase.Add(9 * time.Hour), Pressure: fixturePressure, Temperature: f(-10.0), Humidity: f(0.0)},
	}
}

// WriteFixture emits the fixture set as NDJSON. The output depends on
// nothing but the fixed records, so repeated runs are byte-identical.
func WriteFixture(w io.Writer) error {
	return WriteNDJSON(w, Fixture())
}
