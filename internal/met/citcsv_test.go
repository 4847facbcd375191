package met

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeCitFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestCitCSVSource_PressureOnly(t *testing.T) {
	dir := t.TempDir()
	pres := writeCitFile(t, dir, "pres.csv", `Time (Local),Pressure (mb)
2024-01-15 02:30:00,1011.0
2024-01-15 08:00:00,1012.5
2024-01-15 14:00:00,1013.0
`)

	src := &CitCSVSource{Site: "ci", PresFile: pres}
	obs, err := src.Read(context.Background(), Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The 02:30 row falls in the midnight-to-03:00 dead zone.
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}

	// January in Pasadena is standard time, UTC-8.
	loc := time.FixedZone("", -8*3600)
	want := time.Date(2024, 1, 15, 8, 0, 0, 0, loc)
	if !obs[0].Time.Equal(want) {
		t.Errorf("expected %s, got %s", want, obs[0].Time)
	}
	if obs[0].Pressure != 1012.5 {
		t.Errorf("expected pressure 1012.5, got %v", obs[0].Pressure)
	}
	if obs[0].Temperature != nil || obs[0].Humidity != nil {
		t.Error("temperature and humidity should be nil without their files")
	}
}

func TestCitCSVSource_DaylightOffset(t *testing.T) {
	dir := t.TempDir()
	pres := writeCitFile(t, dir, "pres.csv", `Time (Local),Pressure (mb)
2024-07-15 12:00:00,1008.0
`)

	src := &CitCSVSource{Site: "ci", PresFile: pres}
	obs, err := src.Read(context.Background(), Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(obs))
	}

	_, off := obs[0].Time.Zone()
	if off != -7*3600 {
		t.Errorf("July should use the daylight offset -25200, got %d", off)
	}
}

func TestCitCSVSource_AllQuantities(t *testing.T) {
	dir := t.TempDir()
	pres := writeCitFile(t, dir, "pres.csv", `Time (Local),Pressure (mb)
2024-01-15 08:00:00,1012.5
2024-01-15 09:00:00,1012.0
`)
	temp := writeCitFile(t, dir, "temp.csv", `Time (Local),Temperature (C)
2024-01-15 08:00:00,15.5
2024-01-15 09:00:00,16.0
`)
	humid := writeCitFile(t, dir, "humid.csv", `Time (Local),Relative Humidity (%)
2024-01-15 08:00:00,40.0
2024-01-15 09:00:00,42.0
`)

	src := &CitCSVSource{Site: "ci", PresFile: pres, TempFile: temp, HumidFile: humid}
	obs, err := src.Read(context.Background(), Window{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}

	loc := time.FixedZone("", -8*3600)
	want := Observation{
		Time:        time.Date(2024, 1, 15, 8, 0, 0, 0, loc),
		Pressure:    1012.5,
		Temperature: fp(15.5),
		Humidity:    fp(40.0),
	}
	if !obs[0].EqualWithin(want, 1e-9) {
		t.Errorf("expected %+v, got %+v", want, obs[0])
	}
}

func TestCitCSVSource_MisalignedTimes(t *testing.T) {
	dir := t.TempDir()
	pres := writeCitFile(t, dir, "pres.csv", `Time (Local),Pressure (mb)
2024-01-15 08:00:00,1012.5
`)
	temp := writeCitFile(t, dir, "temp.csv", `Time (Local),Temperature (C)
2024-01-15 08:30:00,15.5
`)

	src := &CitCSVSource{Site: "ci", PresFile: pres, TempFile: temp}
	_, err := src.Read(context.Background(), Window{})
	if err == nil {
		t.Fatal("expected error for misaligned timestamps")
	}
	if !strings.Contains(err.Error(), "do not match exactly") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestCitCSVSource_UnknownSite(t *testing.T) {
	src := &CitCSVSource{Site: "zz", PresFile: "unused"}
	if _, err := src.Read(context.Background(), Window{}); err == nil {
		t.Error("expected error for unknown site code")
	}
}

func TestCitCSVSource_WrongQuantityHeader(t *testing.T) {
	dir := t.TempDir()
	pres := writeCitFile(t, dir, "pres.csv", `Time (Local),Wind Speed (m/s)
2024-01-15 08:00:00,3.2
`)

	src := &CitCSVSource{Site: "ci", PresFile: pres}
	if _, err := src.Read(context.Background(), Window{}); err == nil {
		t.Error("expected error when the second column is not the expected quantity")
	}
}

func TestIsUSDaylightTime(t *testing.T) {
	cases := []struct {
		name string
		when time.Time
		want bool
	}{
		{"mid winter", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), false},
		{"mid summer", time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC), true},
		{"before spring transition", time.Date(2024, 3, 10, 1, 59, 0, 0, time.UTC), false},
		{"after spring transition", time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), true},
		{"before fall transition", time.Date(2024, 11, 3, 1, 59, 0, 0, time.UTC), true},
		{"after fall transition", time.Date(2024, 11, 3, 2, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isUSDaylightTime(tc.when); got != tc.want {
				t.Errorf("isUSDaylightTime(%s) = %v, want %v", tc.when, got, tc.want)
			}
		})
	}
}
