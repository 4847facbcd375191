// Package pattern renders {KEY} and {KEY:layout} placeholders in paths and
// command arguments. Layouts after the colon are Go reference layouts.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// placeholderRe matches one {...} group; the inner text is split on the
// first colon into a key and an optional time layout.
var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// UnknownKeyError is returned when a pattern references a placeholder the
// renderer does not define.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %q in pattern string", e.Key)
}

// LookupFunc resolves one placeholder. layout is empty when the pattern
// gave no explicit format.
type LookupFunc func(key, layout string) (string, error)

// Render substitutes every placeholder in pattern using lookup. Text
// outside the braces is copied through untouched; a string without
// placeholders renders to itself.
func Render(patternStr string, lookup LookupFunc) (string, error) {
	var sb strings.Builder
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(patternStr, -1) {
		sb.WriteString(patternStr[last:m[0]])

		inner := patternStr[m[2]:m[3]]
		key, layout, _ := strings.Cut(inner, ":")
		value, err := lookup(key, layout)
		if err != nil {
			return "", err
		}
		sb.WriteString(value)
		last = m[1]
	}
	sb.WriteString(patternStr[last:])
	return sb.String(), nil
}

// defaultTimeLayout renders window bounds for script arguments, matching
// the observation wire format.
const defaultTimeLayout = "2006-01-02T15:04:05-0700"

// defaultDateLayout renders {DATE} placeholders in path templates.
const defaultDateLayout = "2006-01-02"

// RenderScriptArg substitutes the {FIRST_OBS_TIME} and {LAST_OBS_TIME}
// placeholders in a script argument.
func RenderScriptArg(arg string, first, last time.Time) (string, error) {
	return Render(arg, func(key, layout string) (string, error) {
		if layout == "" {
			layout = defaultTimeLayout
		}
		switch key {
		case "FIRST_OBS_TIME":
			return first.Format(layout), nil
		case "LAST_OBS_TIME":
			return last.Format(layout), nil
		default:
			return "", &UnknownKeyError{Key: key}
		}
	})
}

// RenderDaily substitutes {DATE} and {SITE_ID} in a path template, e.g.
// "/data/{SITE_ID}/{DATE:2006/01/02}/met.json".
func RenderDaily(path string, date time.Time, siteID string) (string, error) {
	return Render(path, func(key, layout string) (string, error) {
		switch key {
		case "DATE":
			if layout == "" {
				layout = defaultDateLayout
			}
			return date.Format(layout), nil
		case "SITE_ID":
			if layout != "" {
				return "", fmt.Errorf("SITE_ID does not accept a format")
			}
			return siteID, nil
		default:
			return "", &UnknownKeyError{Key: key}
		}
	})
}
