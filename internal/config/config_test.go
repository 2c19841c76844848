package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvShowErrors, EnvPreviewTimeout, EnvNotebookTimeout, EnvMaxReleases, EnvGitHubToken} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "docs/mintlify", cfg.Paths.MintlifySource)
	assert.Equal(t, "docs/public_api.opml", cfg.Paths.OPML)
	assert.Equal(t, "docs/target", cfg.Paths.Target)
	assert.Equal(t, manifest.DefaultSDKTab, cfg.SDK.TabName)
	assert.Equal(t, GeneratorBuiltin, cfg.SDK.Generator)
	assert.Equal(t, 5*time.Minute, cfg.Notebooks.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Preview.Timeout)
	assert.Equal(t, 3001, cfg.Preview.Port)
	assert.True(t, cfg.Preview.IsEnabled())
	assert.Equal(t, 50, cfg.Changelog.MaxReleases)
	assert.Equal(t, "pixeltable/pixeltable", cfg.GitHub.Repo)
	assert.Equal(t, "main", cfg.DocsRepo.ProdBranch)
	assert.False(t, cfg.SDK.ShowErrors)
}

func TestLoad_FileAndExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCS_REMOTE", "https://example.com/docs.git")
	root := t.TempDir()
	body := `
paths:
  copy_ignore: ["**/drafts"]
docs_repo:
  url: ${DOCS_REMOTE}
sdk:
  generator: command
  timeout: 2m
preview:
  enabled: false
  port: 4000
metrics:
  textfile: /tmp/pxtdocs.prom
`
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFile), []byte(body), 0o600))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/drafts"}, cfg.Paths.CopyIgnore)
	assert.Equal(t, "https://example.com/docs.git", cfg.DocsRepo.URL)
	assert.Equal(t, GeneratorCommand, cfg.SDK.Generator)
	assert.Equal(t, []string{"mintlifier"}, cfg.SDK.Command)
	assert.Equal(t, 2*time.Minute, cfg.SDK.Timeout)
	assert.False(t, cfg.Preview.IsEnabled())
	assert.Equal(t, 4000, cfg.Preview.Port)
	assert.Equal(t, "/tmp/pxtdocs.prom", cfg.Metrics.Textfile)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	_, err := Load(root, filepath.Join(root, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_UnknownKey(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFile), []byte("sdk:\n  genrator: builtin\n"), 0o600))
	_, err := Load(root, "")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFile), nil, 0o600))
	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, GeneratorBuiltin, cfg.SDK.Generator)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvShowErrors, "true")
	t.Setenv(EnvPreviewTimeout, "12s")
	t.Setenv(EnvNotebookTimeout, "1m")
	t.Setenv(EnvMaxReleases, "7")
	t.Setenv(EnvGitHubToken, "ghp_env")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.True(t, cfg.SDK.ShowErrors)
	assert.Equal(t, 12*time.Second, cfg.Preview.Timeout)
	assert.Equal(t, time.Minute, cfg.Notebooks.Timeout)
	assert.Equal(t, 7, cfg.Changelog.MaxReleases)
	assert.Equal(t, "ghp_env", cfg.GitHub.Token)
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvMaxReleases, "many")
	_, err := Load(t.TempDir(), "")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	v, _ := ce.Context().GetString("variable")
	assert.Equal(t, EnvMaxReleases, v)
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("PXTDOCS_TEST_ONLY=fromfile\nGITHUB_TOKEN=ghp_file\n"), 0o600))
	t.Setenv("PXTDOCS_TEST_ONLY", "fromenv")
	require.NoError(t, os.Unsetenv(EnvGitHubToken))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "fromenv", os.Getenv("PXTDOCS_TEST_ONLY"))
	assert.Equal(t, "ghp_file", cfg.GitHub.Token)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"empty tab", func(c *Config) { c.SDK.TabName = "" }, "sdk.tab_name"},
		{"bad generator", func(c *Config) { c.SDK.Generator = "magic" }, "sdk.generator"},
		{"command without command", func(c *Config) { c.SDK.Generator = GeneratorCommand; c.SDK.Command = nil }, "sdk.command"},
		{"negative timeout", func(c *Config) { c.Preview.Timeout = -time.Second }, "preview.timeout"},
		{"bad repo", func(c *Config) { c.GitHub.Repo = "pixeltable" }, "github.repo"},
		{"empty branch", func(c *Config) { c.DocsRepo.StageBranch = "" }, "docs_repo.stage_branch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			require.NoError(t, c.Validate())
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, errors.CategoryConfig, ce.Category())
			field, _ := ce.Context().GetString("field")
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestLayout(t *testing.T) {
	c := Default()
	c.Notebooks.Dir = "/abs/notebooks"
	l := c.Layout("/repo")
	assert.Equal(t, "/repo/docs/mintlify", l.Source)
	assert.Equal(t, "/repo/docs/public_api.opml", l.OPML)
	assert.Equal(t, "/repo/docs/target", l.Target)
	assert.Equal(t, "/abs/notebooks", l.Notebooks)
	assert.Equal(t, "/repo/docs/mintlify/docs.json", l.DocsJSON())
	assert.Equal(t, "/repo/docs/target/docs.json", l.TargetDocsJSON())
}
