package observability

import (
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Property: the per-type counts always sum to the event count, and every
// written event is accounted for.
func TestProperty_MetricsCountsConsistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		path := filepath.Join(t.TempDir(), "events.jsonl")
		log, err := NewJSONLEventLog(path)
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer log.Close()

		types := []string{"source.read", "source.interpolated", "serve.started"}
		levels := []string{"INFO", "WARN", "ERROR"}

		n := rapid.IntRange(0, 50).Draw(rt, "n")
		base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		wantErrors := 0
		for i := 0; i < n; i++ {
			level := levels[rapid.IntRange(0, len(levels)-1).Draw(rt, "level")]
			if level == "ERROR" {
				wantErrors++
			}
			event := Event{
				Time:    base.Add(time.Duration(i) * time.Minute),
				Level:   level,
				Type:    types[rapid.IntRange(0, len(types)-1).Draw(rt, "type")],
				Message: "event",
			}
			if err := log.Write(event); err != nil {
				t.Fatalf("writing event %d: %v", i, err)
			}
		}

		m, err := NewMetricsCalculator(log).Calculate(time.Time{})
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		if m.EventCount != n {
			t.Fatalf("expected %d events, got %d", n, m.EventCount)
		}
		if m.Errors != wantErrors {
			t.Fatalf("expected %d errors, got %d", wantErrors, m.Errors)
		}

		sum := 0
		for _, c := range m.EventsByType {
			sum += c
		}
		if sum != n {
			t.Fatalf("per-type counts sum to %d, expected %d", sum, n)
		}
		if m.SourcesRead+m.Interpolations+m.ServeStarts != n {
			t.Fatalf("typed counters sum to %d, expected %d",
				m.SourcesRead+m.Interpolations+m.ServeStarts, n)
		}
	})
}
