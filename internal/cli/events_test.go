package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atmoskit/metkit/internal/observability"
)

// withEventLog injects a temp-file event log seeded with events, restoring
// the previous log when the test finishes.
func withEventLog(t *testing.T, events []observability.Event) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := observability.NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}

	orig := EventLog
	EventLog = log
	t.Cleanup(func() {
		_ = log.Close()
		EventLog = orig
	})

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
}

func TestEventsCommand_ListsRecent(t *testing.T) {
	now := time.Now().UTC()
	withEventLog(t, []observability.Event{
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "source.read", Message: "converted met source"},
		{Time: now.Add(-30 * 24 * time.Hour), Level: "INFO", Type: "source.read", Message: "ancient read"},
	})

	out, err := runCommand(t, "events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "converted met source") {
		t.Errorf("output should list the recent event, got:\n%s", out)
	}
	if strings.Contains(out, "ancient read") {
		t.Errorf("events older than the default 7d window should be hidden, got:\n%s", out)
	}
}

func TestEventsCommand_JSON(t *testing.T) {
	now := time.Now().UTC()
	withEventLog(t, []observability.Event{
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "source.read", Message: "read"},
	})

	out, err := runCommand(t, "events", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events []observability.Event
	if err := json.Unmarshal([]byte(out), &events); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestEventsCommand_TypeFilter(t *testing.T) {
	now := time.Now().UTC()
	withEventLog(t, []observability.Event{
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "source.read", Message: "read"},
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "serve.started", Message: "served"},
	})

	out, err := runCommand(t, "events", "--type", "serve.started")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "source.read") {
		t.Errorf("filtered output should not contain source.read, got:\n%s", out)
	}
	if !strings.Contains(out, "serve.started") {
		t.Errorf("filtered output should contain serve.started, got:\n%s", out)
	}
}

func TestEventsCommand_Stats(t *testing.T) {
	now := time.Now().UTC()
	withEventLog(t, []observability.Event{
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "source.read", Message: "read"},
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "source.read", Message: "read"},
		{Time: now.Add(-time.Hour), Level: "INFO", Type: "source.interpolated", Message: "interp"},
	})

	out, err := runCommand(t, "events", "--stats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Sources read:   2") {
		t.Errorf("stats should count 2 source reads, got:\n%s", out)
	}
	if !strings.Contains(out, "Interpolations: 1") {
		t.Errorf("stats should count 1 interpolation, got:\n%s", out)
	}
}

func TestEventsCommand_Alerts(t *testing.T) {
	withEventLog(t, []observability.Event{
		{Time: time.Now().UTC().Add(-100 * time.Hour), Level: "INFO", Type: "source.read", Message: "stale read"},
	})

	out, err := runCommand(t, "events", "--alerts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[HIGH]") {
		t.Errorf("expected a high-severity staleness alert, got:\n%s", out)
	}
}

func TestEventsCommand_AlertsQuiet(t *testing.T) {
	withEventLog(t, []observability.Event{
		{Time: time.Now().UTC().Add(-time.Hour), Level: "INFO", Type: "source.read", Message: "fresh read"},
	})

	out, err := runCommand(t, "events", "--alerts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No alerts triggered.") {
		t.Errorf("expected no alerts, got:\n%s", out)
	}
}

func TestParseSinceDuration(t *testing.T) {
	now := time.Now().UTC()

	got, err := parseSinceDuration("2d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := now.Sub(got); d < 47*time.Hour || d > 49*time.Hour {
		t.Errorf("2d should be about 48h back, got %s", d)
	}

	got, err = parseSinceDuration("24h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := now.Sub(got); d < 23*time.Hour || d > 25*time.Hour {
		t.Errorf("24h should be about 24h back, got %s", d)
	}

	if _, err := parseSinceDuration("soon"); err == nil {
		t.Error("expected error for an invalid duration")
	}

	got, err = parseSinceDuration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := now.Sub(got); d < 6*24*time.Hour || d > 8*24*time.Hour {
		t.Errorf("empty duration should default to 7d, got %s", d)
	}
}
