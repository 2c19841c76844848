package toolexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestShellRunner_Output(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	var stream bytes.Buffer
	r := NewShellRunner(slog.New(slog.DiscardHandler))

	res, err := r.Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", `echo "$GREETING from $(pwd)"; echo oops >&2`},
		Dir:    dir,
		Env:    map[string]string{"GREETING": "hello"},
		Stream: &stream,
	})
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	out := string(res.Output)
	assert.True(t, strings.Contains(out, "hello from "+dir) || strings.Contains(out, "hello from "+resolved), out)
	assert.Contains(t, out, "oops")
	assert.Equal(t, out, stream.String())
}

func TestShellRunner_Failure(t *testing.T) {
	requireShell(t)
	r := NewShellRunner(slog.New(slog.DiscardHandler))
	_, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo bad input; exit 3"}})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTool))
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	out, _ := ce.Context().GetString("output")
	assert.Equal(t, "bad input", out)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestShellRunner_Timeout(t *testing.T) {
	requireShell(t)
	r := NewShellRunner(slog.New(slog.DiscardHandler))
	res, err := r.Run(context.Background(), Command{
		Name:    "sh",
		Args:    []string{"-c", "echo started; exec sleep 5"},
		Timeout: 300 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	require.NotNil(t, res)
	assert.True(t, res.TimedOut)
	assert.Contains(t, string(res.Output), "started")
}

func TestShellRunner_PathPrefix(t *testing.T) {
	requireShell(t)
	bin := t.TempDir()
	script := filepath.Join(bin, "pxt-fake-tool")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho from venv\n"), 0o755))

	r := NewShellRunner(slog.New(slog.DiscardHandler)).WithPathPrefix(bin)
	res, err := r.Run(context.Background(), Command{Name: "pxt-fake-tool"})
	require.NoError(t, err)
	assert.Equal(t, "from venv\n", string(res.Output))
	assert.Equal(t, script, r.resolve("pxt-fake-tool"))
	assert.Equal(t, "sh", r.resolve("sh"))
}

func TestShellRunner_MissingTool(t *testing.T) {
	r := NewShellRunner(slog.New(slog.DiscardHandler))
	_, err := r.Run(context.Background(), Command{Name: "pxtdocs-definitely-missing-tool"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTool))
}

func TestFakeRunner(t *testing.T) {
	f := &FakeRunner{Handler: func(cmd Command) (*Result, error) {
		if cmd.Name == "quarto" {
			return nil, errors.New("no quarto")
		}
		return &Result{Output: []byte("ok")}, nil
	}}
	_, err := f.Run(context.Background(), Command{Name: "quarto", Args: []string{"render"}})
	require.Error(t, err)
	res, err := f.Run(context.Background(), Command{Name: "npx"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(res.Output))
	assert.Equal(t, []string{"quarto", "npx"}, f.Names())
	assert.Equal(t, "quarto render", f.Calls[0].String())
}

func TestWithPathPrefix(t *testing.T) {
	shell := NewShellRunner(nil)
	sr, ok := WithPathPrefix(shell, "/venv/bin").(*ShellRunner)
	require.True(t, ok)
	assert.Equal(t, []string{"/venv/bin"}, sr.PathPrefix)
	assert.Empty(t, shell.PathPrefix)

	fake := &FakeRunner{}
	env := map[string]string{"LANG": "C"}
	_, err := WithPathPrefix(fake, "/venv/bin").Run(context.Background(), Command{Name: "pip", Env: env})
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	assert.True(t, strings.HasPrefix(fake.Calls[0].Env["PATH"], "/venv/bin"+string(os.PathListSeparator)))
	assert.Equal(t, "C", fake.Calls[0].Env["LANG"])
	assert.NotContains(t, env, "PATH")
}
