package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

func TestManager_Lifecycle(t *testing.T) {
	mgr := NewManager(t.TempDir(), nil)
	assert.Empty(t, mgr.Path())

	_, err := mgr.Subdir("x")
	require.Error(t, err)

	require.NoError(t, mgr.Create())
	ws := mgr.Path()
	assert.True(t, strings.HasPrefix(filepath.Base(ws), "pxtdocs-"))
	assert.DirExists(t, ws)

	sub, err := mgr.Subdir("docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "docs"), sub)
	assert.DirExists(t, sub)

	require.NoError(t, mgr.Cleanup())
	assert.NoDirExists(t, ws)
	assert.Empty(t, mgr.Path())
	require.NoError(t, mgr.Cleanup())
}

func TestManager_TwoRunsDoNotCollide(t *testing.T) {
	base := t.TempDir()
	a := NewManager(base, nil)
	b := NewManager(base, nil)
	require.NoError(t, a.Create())
	require.NoError(t, b.Create())
	assert.NotEqual(t, a.Path(), b.Path())
}

func TestManager_Keep(t *testing.T) {
	mgr := NewManager(t.TempDir(), nil).KeepOnCleanup(true)
	require.NoError(t, mgr.Create())
	require.NoError(t, mgr.Cleanup())
	assert.DirExists(t, mgr.Path())
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func TestClearExcept(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".git/HEAD":         "ref",
		"sdk/v0.4/a.mdx":    "a",
		"docs.json":         "{}",
		"overview/intro.md": "i",
	})

	require.NoError(t, ClearExcept(dir, ".git", "sdk"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{".git", "sdk"}, names)

	missing := filepath.Join(t.TempDir(), "new")
	require.NoError(t, ClearExcept(missing))
	assert.DirExists(t, missing)
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"docs.json":                  "{}",
		".hidden/x.md":               "h",
		".env":                       "secret",
		"overview/intro.mdx":         "intro",
		"overview/drafts/wip.mdx":    "wip",
		"sdk/latest/pixeltable.mdx":  "sdk",
		"notebooks/nb.ipynb":         "{}",
		"notebooks/deep/other.ipynb": "{}",
		"notebooks/deep/keep.mdx":    "k",
	})
	dst := filepath.Join(t.TempDir(), "out")
	writeTree(t, dst, map[string]string{"existing.txt": "stay"})

	n, err := CopyTree(src, dst, CopyOptions{
		SkipHidden: true,
		Exclude:    []string{"sdk"},
		Ignore:     []string{"**/drafts", "**/*.ipynb"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.FileExists(t, filepath.Join(dst, "docs.json"))
	assert.FileExists(t, filepath.Join(dst, "overview", "intro.mdx"))
	assert.FileExists(t, filepath.Join(dst, "notebooks", "deep", "keep.mdx"))
	assert.FileExists(t, filepath.Join(dst, "existing.txt"))
	assert.NoDirExists(t, filepath.Join(dst, ".hidden"))
	assert.NoFileExists(t, filepath.Join(dst, ".env"))
	assert.NoDirExists(t, filepath.Join(dst, "sdk"))
	assert.NoDirExists(t, filepath.Join(dst, "overview", "drafts"))
	assert.NoFileExists(t, filepath.Join(dst, "notebooks", "nb.ipynb"))
}

func TestCopyTree_Errors(t *testing.T) {
	_, err := CopyTree(filepath.Join(t.TempDir(), "missing"), t.TempDir(), CopyOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))

	_, err = CopyTree(t.TempDir(), t.TempDir(), CopyOptions{Ignore: []string{"[unclosed"}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestReset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "target")
	writeTree(t, dir, map[string]string{"old/file.md": "x"})
	require.NoError(t, Reset(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
