package observability

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWebhookNotifier_PostsAlerts(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected application/json, got %s", r.Header.Get("Content-Type"))
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	alerts := []Alert{
		{
			ID:          "stale-ingest",
			Condition:   "ingestion_stale",
			Severity:    SeverityHigh,
			Message:     "no source read for more than 48 hours",
			TriggeredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "recent-errors",
			Condition:   "errors_in_window",
			Severity:    SeverityMedium,
			Message:     "3 error events in the last 24 hours",
			TriggeredAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	if err := NewWebhookNotifier(srv.URL).Notify(alerts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var msg struct {
		Blocks []struct {
			Type string `json:"type"`
			Text *struct {
				Text string `json:"text"`
			} `json:"text"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("decoding posted body: %v", err)
	}

	// Header block, first alert, divider, second alert.
	if len(msg.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(msg.Blocks))
	}
	if msg.Blocks[2].Type != "divider" {
		t.Errorf("expected a divider between alerts, got %s", msg.Blocks[2].Type)
	}
	if !strings.Contains(msg.Blocks[1].Text.Text, "[HIGH]") {
		t.Errorf("alert block should show the severity, got %q", msg.Blocks[1].Text.Text)
	}
	if !strings.Contains(msg.Blocks[1].Text.Text, "48 hours") {
		t.Errorf("alert block should carry the message, got %q", msg.Blocks[1].Text.Text)
	}
}

func TestWebhookNotifier_EmptyAlertsSkipRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	if err := NewWebhookNotifier(srv.URL).Notify(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("no request should be made for an empty alert list")
	}
}

func TestWebhookNotifier_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Notify([]Alert{{Severity: SeverityLow, Message: "m", TriggeredAt: time.Now()}})
	if err == nil {
		t.Fatal("expected error for a non-200 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status code, got: %v", err)
	}
}
