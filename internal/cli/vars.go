package cli

import (
	"path/filepath"

	"github.com/atmoskit/metkit/internal/config"
	"github.com/atmoskit/metkit/internal/observability"
)

// Services shared by the commands, set during app initialization.
var (
	Cfg      *config.Config
	BasePath string

	// EventLog may be injected by tests; commands obtain it via eventLog()
	// so that commands which never record anything (fixture in particular)
	// touch no files.
	EventLog observability.EventLog
)

// eventLog lazily opens the JSONL event log in the data directory. It
// returns nil when observability is unavailable, which Record treats as a
// no-op.
func eventLog() observability.EventLog {
	if EventLog != nil {
		return EventLog
	}
	if Cfg == nil || Cfg.EventLogName == "" || BasePath == "" {
		return nil
	}
	log, err := observability.NewJSONLEventLog(filepath.Join(BasePath, Cfg.EventLogName))
	if err != nil {
		return nil
	}
	EventLog = log
	return log
}

// recordFailure logs a command failure before the error propagates to the
// user, so `events --stats` and `events --alerts` see real ingestion
// failures, not just successes. Logging problems never mask the original
// error.
func recordFailure(eventType string, err error) {
	_ = observability.Record(eventLog(), "ERROR", eventType, err.Error(), nil)
}
