package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func seededLog(t *testing.T, events []Event) EventLog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
	return log
}

func TestMetricsCalculator_Aggregates(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	log := seededLog(t, []Event{
		{Time: base, Level: "INFO", Type: "source.read", Message: "read"},
		{Time: base.Add(time.Minute), Level: "INFO", Type: "source.read", Message: "read"},
		{Time: base.Add(2 * time.Minute), Level: "INFO", Type: "source.interpolated", Message: "interp"},
		{Time: base.Add(3 * time.Minute), Level: "INFO", Type: "serve.started", Message: "serve"},
		{Time: base.Add(4 * time.Minute), Level: "ERROR", Type: "source.read", Message: "failed"},
	})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.EventCount != 5 {
		t.Errorf("expected 5 events, got %d", m.EventCount)
	}
	if m.SourcesRead != 3 {
		t.Errorf("expected 3 source reads, got %d", m.SourcesRead)
	}
	if m.Interpolations != 1 {
		t.Errorf("expected 1 interpolation, got %d", m.Interpolations)
	}
	if m.ServeStarts != 1 {
		t.Errorf("expected 1 serve start, got %d", m.ServeStarts)
	}
	if m.Errors != 1 {
		t.Errorf("expected 1 error, got %d", m.Errors)
	}
	if m.EventsByType["source.read"] != 3 {
		t.Errorf("expected 3 source.read in the type map, got %d", m.EventsByType["source.read"])
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("expected oldest event at %s, got %v", base, m.OldestEvent)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(base.Add(4*time.Minute)) {
		t.Errorf("expected newest event at %s, got %v", base.Add(4*time.Minute), m.NewestEvent)
	}
}

func TestMetricsCalculator_RespectsSince(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	log := seededLog(t, []Event{
		{Time: base, Level: "INFO", Type: "source.read", Message: "old"},
		{Time: base.Add(2 * time.Hour), Level: "INFO", Type: "source.read", Message: "recent"},
	})

	m, err := NewMetricsCalculator(log).Calculate(base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.EventCount != 1 {
		t.Errorf("expected 1 event after the cutoff, got %d", m.EventCount)
	}
	if m.SourcesRead != 1 {
		t.Errorf("expected 1 source read, got %d", m.SourcesRead)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log := seededLog(t, nil)

	m, err := NewMetricsCalculator(log).Calculate(time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.EventCount != 0 {
		t.Errorf("expected 0 events, got %d", m.EventCount)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Error("empty log should have no oldest or newest event")
	}
}
