package met

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atmoskit/metkit/internal/pattern"
)

// ScriptSource fetches observations by running an external program and
// parsing its stdout as NDJSON, one observation per line. Anything else the
// program wants to print must go to stderr. Arguments may use the
// {FIRST_OBS_TIME} and {LAST_OBS_TIME} placeholders (optionally with a Go
// time layout after a colon) to receive the window bounds.
type ScriptSource struct {
	Script     string   `json:"script"`
	Args       []string `json:"args,omitempty"`
	WorkingDir string   `json:"working_dir,omitempty"`
}

func (s *ScriptSource) Describe() string {
	return fmt.Sprintf("external script V1 (%s)", s.Script)
}

func (s *ScriptSource) Read(ctx context.Context, win Window) ([]Observation, error) {
	// A script that formats the window into its arguments still needs
	// something to substitute when no target times were given.
	first, last := win.First, win.Last
	if win.IsZero() {
		first = time.Unix(0, 0).UTC()
		last = first
	}

	args := make([]string, 0, len(s.Args))
	for _, a := range s.Args {
		rendered, err := pattern.RenderScriptArg(a, first, last)
		if err != nil {
			return nil, fmt.Errorf("rendering script argument %q: %w", a, err)
		}
		args = append(args, rendered)
	}

	cmd := exec.CommandContext(ctx, s.Script, args...)
	cmd.Dir = s.WorkingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("calling %s with arguments %q returned exit code %d: %s",
				s.Script, strings.Join(args, " "), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("starting %s: %w", s.Script, err)
	}

	obs, err := ReadNDJSON(&stdout)
	if err != nil {
		return nil, fmt.Errorf("reading output of %s: %w", s.Script, err)
	}
	return obs, nil
}
