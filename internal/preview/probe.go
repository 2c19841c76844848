// Package preview probes a built site with the Mintlify dev server and
// collects the parsing errors it reports on startup.
package preview

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultPort    = 3001
)

// Result is what the probe observed.
type Result struct {
	// Findings are the trimmed output lines mentioning a parsing error, or
	// a single "could not run" line when the dev server did not start.
	Findings []string
	// Unavailable is set when the dev server could not be started; its
	// finding is advisory only.
	Unavailable bool
}

// Prober runs "npx mintlify dev" against a directory for a short while.
type Prober struct {
	runner  toolexec.Runner
	timeout time.Duration
	port    int
	logger  *slog.Logger
}

// NewProber creates a prober. Zero timeout or port select the defaults.
func NewProber(runner toolexec.Runner, timeout time.Duration, port int, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if port <= 0 {
		port = DefaultPort
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{runner: runner, timeout: timeout, port: port, logger: logger}
}

// Probe starts the dev server in dir until the timeout expires, which is
// the expected way for it to end, and scans what it printed.
func (p *Prober) Probe(ctx context.Context, dir string) (*Result, error) {
	res, err := p.runner.Run(ctx, toolexec.Command{
		Name:    "npx",
		Args:    []string{"mintlify", "dev", "--port", strconv.Itoa(p.port), "--no-open"},
		Dir:     dir,
		Timeout: p.timeout,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && !errors.Is(err, toolexec.ErrTimeout) && (res == nil || len(res.Output) == 0) {
		p.logger.Warn("Could not run preview validation", logfields.Tool("npx"), logfields.Error(err))
		return &Result{Findings: []string{"could not run validation: " + err.Error()}, Unavailable: true}, nil
	}

	if res == nil {
		res = &toolexec.Result{}
	}
	findings := ParsingErrors(res.Output)
	p.logger.Debug("Preview probe finished", logfields.Path(dir), logfields.Count(len(findings)))
	return &Result{Findings: findings}, nil
}

// ParsingErrors returns the non-empty trimmed lines of output that mention
// a parsing error, case-insensitively.
func ParsingErrors(output []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && strings.Contains(strings.ToLower(line), "parsing error") {
			out = append(out, line)
		}
	}
	return out
}
