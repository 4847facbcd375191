package cli

import (
	"fmt"
	"time"

	"github.com/atmoskit/metkit/internal/met"
	"github.com/atmoskit/metkit/internal/pattern"
)

// resolveSourcePath picks the source config path from the -s flag or the
// configured default, then renders any {DATE} / {SITE_ID} placeholders.
func resolveSourcePath(flagPath, dateStr, siteID string) (string, error) {
	path := flagPath
	if path == "" && Cfg != nil {
		path = Cfg.SourcePath
	}
	if path == "" {
		return "", fmt.Errorf("no met source given: pass --source or set \"source\" in the config file")
	}

	date := time.Now().UTC()
	if dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return "", fmt.Errorf("parsing --date %q (expected YYYY-MM-DD): %w", dateStr, err)
		}
	}
	if siteID == "" && Cfg != nil {
		siteID = Cfg.SiteID
	}

	return pattern.RenderDaily(path, date, siteID)
}

// parseTimeArg accepts the observation wire layout or RFC 3339.
func parseTimeArg(s string) (time.Time, error) {
	for _, layout := range []string{met.TimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected RFC 3339 or %s)", s, met.TimeLayout)
}

// windowFromFlags builds a read window from optional --start/--end values.
func windowFromFlags(start, end string) (met.Window, error) {
	if start == "" && end == "" {
		return met.Window{}, nil
	}
	if start == "" || end == "" {
		return met.Window{}, fmt.Errorf("--start and --end must be given together")
	}
	first, err := parseTimeArg(start)
	if err != nil {
		return met.Window{}, err
	}
	last, err := parseTimeArg(end)
	if err != nil {
		return met.Window{}, err
	}
	if last.Before(first) {
		return met.Window{}, fmt.Errorf("--end is before --start")
	}
	return met.NewWindow(first, last)
}
