package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	StaleIngestHours int `yaml:"stale_ingest_threshold_hours" json:"stale_ingest_threshold_hours"`
	ErrorWindowHours int `yaml:"error_window_hours" json:"error_window_hours"`
	MaxErrors        int `yaml:"max_errors" json:"max_errors"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StaleIngestHours: 48,
		ErrorWindowHours: 24,
		MaxErrors:        0,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
	}
}

// Evaluate reads events and checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := time.Now().UTC()
	var alerts []Alert

	staleAlerts, err := ae.checkStaleIngestion(now)
	if err != nil {
		return nil, fmt.Errorf("checking ingestion staleness: %w", err)
	}
	alerts = append(alerts, staleAlerts...)

	errorAlerts, err := ae.checkRecentErrors(now)
	if err != nil {
		return nil, fmt.Errorf("checking recent errors: %w", err)
	}
	alerts = append(alerts, errorAlerts...)

	return alerts, nil
}

// checkStaleIngestion alerts when no source has been read successfully
// within the staleness threshold. Failed reads are recorded under the same
// type but do not count as fresh ingestion. Sites that feed retrievals
// daily notice dead cron jobs this way.
func (ae *alertEngine) checkStaleIngestion(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Type: "source.read"})
	if err != nil {
		return nil, err
	}

	var last time.Time
	seen := false
	for _, event := range events {
		if event.Level == "ERROR" {
			continue
		}
		if !seen || event.Time.After(last) {
			last = event.Time
			seen = true
		}
	}
	if !seen {
		return nil, nil
	}

	threshold := time.Duration(ae.thresholds.StaleIngestHours) * time.Hour
	if now.Sub(last) <= threshold {
		return nil, nil
	}

	return []Alert{{
		ID:          "stale-ingest",
		Condition:   "ingestion_stale",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("no source read for more than %d hours (last at %s)", ae.thresholds.StaleIngestHours, last.Format("2006-01-02 15:04 UTC")),
		TriggeredAt: now,
	}}, nil
}

// checkRecentErrors alerts when ERROR events within the window exceed the
// configured maximum.
func (ae *alertEngine) checkRecentErrors(now time.Time) ([]Alert, error) {
	since := now.Add(-time.Duration(ae.thresholds.ErrorWindowHours) * time.Hour)
	events, err := ae.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, err
	}

	errorCount := 0
	for _, event := range events {
		if event.Level == "ERROR" {
			errorCount++
		}
	}

	if errorCount <= ae.thresholds.MaxErrors {
		return nil, nil
	}

	return []Alert{{
		ID:          "recent-errors",
		Condition:   "errors_in_window",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("%d error events in the last %d hours", errorCount, ae.thresholds.ErrorWindowHours),
		TriggeredAt: now,
	}}, nil
}
