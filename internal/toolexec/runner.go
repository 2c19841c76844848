// Package toolexec runs the external tools the build depends on: quarto,
// the Mintlify CLI, python and pip, and command-mode SDK generators.
package toolexec

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sh "github.com/codeskyblue/go-sh"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
)

// ErrTimeout is returned, wrapped, when a command outlives its timeout.
var ErrTimeout = stderrors.New("command timed out")

const outputTail = 2000

// Command describes one tool invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
	// Timeout kills the command after the given duration; zero means the
	// context deadline, if any, is the only limit.
	Timeout time.Duration
	// Stream, when set, receives stdout and stderr as they are produced.
	Stream io.Writer
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is what a finished or timed-out command produced.
type Result struct {
	// Output is stdout and stderr interleaved.
	Output   []byte
	Duration time.Duration
	TimedOut bool
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ShellRunner runs commands through go-sh sessions.
type ShellRunner struct {
	// PathPrefix directories are searched before PATH and prepended to the
	// child's PATH, e.g. a virtualenv bin directory.
	PathPrefix []string
	logger     *slog.Logger
}

// NewShellRunner creates a runner that logs through logger.
func NewShellRunner(logger *slog.Logger, pathPrefix ...string) *ShellRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShellRunner{PathPrefix: pathPrefix, logger: logger}
}

// WithPathPrefix returns a copy of r that also searches dirs first.
func (r *ShellRunner) WithPathPrefix(dirs ...string) *ShellRunner {
	cp := *r
	cp.PathPrefix = append(append([]string{}, dirs...), r.PathPrefix...)
	return &cp
}

// WithPathPrefix returns r searching dirs first. Runners other than
// ShellRunner receive the prefix through the command's PATH variable.
func WithPathPrefix(r Runner, dirs ...string) Runner {
	if sr, ok := r.(*ShellRunner); ok {
		return sr.WithPathPrefix(dirs...)
	}
	return prefixedRunner{next: r, dirs: dirs}
}

type prefixedRunner struct {
	next Runner
	dirs []string
}

func (p prefixedRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	env := maps.Clone(cmd.Env)
	if env == nil {
		env = make(map[string]string, 1)
	}
	env["PATH"] = strings.Join(append(append([]string{}, p.dirs...), os.Getenv("PATH")), string(os.PathListSeparator))
	cmd.Env = env
	return p.next.Run(ctx, cmd)
}

// Run executes cmd. A non-zero exit or a failure to start is a tool error
// carrying the tail of the output; a timeout additionally wraps ErrTimeout
// and still returns the partial Result.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := sh.NewSession()
	if cmd.Dir != "" {
		s.SetDir(cmd.Dir)
	}
	if len(r.PathPrefix) > 0 {
		s.SetEnv("PATH", strings.Join(append(append([]string{}, r.PathPrefix...), os.Getenv("PATH")), string(os.PathListSeparator)))
	}
	for k, v := range cmd.Env {
		s.SetEnv(k, v)
	}

	out := &syncBuffer{}
	var w io.Writer = out
	if cmd.Stream != nil {
		w = io.MultiWriter(out, cmd.Stream)
	}
	s.Stdout = w
	s.Stderr = w

	timeout := cmd.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout == 0 || left < timeout {
			timeout = left
		}
	}

	args := make([]any, len(cmd.Args))
	for i, a := range cmd.Args {
		args[i] = a
	}
	s.Command(r.resolve(cmd.Name), args...)

	r.logger.Debug("Running tool", logfields.Tool(cmd.Name), slog.String("cmd", cmd.String()), logfields.Path(cmd.Dir))
	start := time.Now()
	err := s.Start()
	if err == nil {
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.Kill(os.Kill)
			case <-done:
			}
		}()
		if timeout > 0 {
			err = s.WaitTimeout(timeout)
		} else {
			err = s.Wait()
		}
		close(done)
	}

	res := &Result{Output: out.Bytes(), Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, ctxErr
	}
	b := errors.ToolError("command failed").WithContext("tool", cmd.Name).WithContext("output", tail(res.Output))
	if stderrors.Is(err, sh.ErrExecTimeout) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		return res, b.WithCause(stderrors.Join(ErrTimeout, err)).Build()
	}
	return res, b.WithCause(err).Build()
}

// resolve finds name in the prefix directories, which the parent's PATH
// lookup would otherwise miss.
func (r *ShellRunner) resolve(name string) string {
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	for _, dir := range r.PathPrefix {
		if p, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return p
		}
	}
	return name
}

// syncBuffer guards the output, which a killed command's copy goroutines
// may still be writing when Run returns.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func tail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > outputTail {
		s = "…" + s[len(s)-outputTail:]
	}
	return s
}
