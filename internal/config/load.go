package config

import (
	"bytes"
	stdErrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// Environment overrides applied after the file and the defaults.
const (
	EnvShowErrors      = "PXTDOCS_SHOW_ERRORS"
	EnvPreviewTimeout  = "PXTDOCS_PREVIEW_TIMEOUT"
	EnvNotebookTimeout = "PXTDOCS_NOTEBOOK_TIMEOUT"
	EnvMaxReleases     = "PXTDOCS_MAX_RELEASES"
	EnvGitHubToken     = "GITHUB_TOKEN"
)

// envFiles are loaded from the project root; earlier files win.
var envFiles = []string{".env.local", ".env"}

// Load reads the configuration for the project at root.
//
// An explicit path must exist. With an empty path, root/pxtdocs.yaml is used
// when present and defaults otherwise. .env files in root are loaded first
// without overriding variables already set.
func Load(root, path string) (*Config, error) {
	loadEnvFiles(root)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, DefaultFile)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
				WithContext("path", path).
				Build()
		}
		slog.Debug("Loaded configuration", "path", path)
	case os.IsNotExist(err) && !explicit:
		slog.Debug("No configuration file, using defaults", "path", path)
	default:
		return nil, errors.WrapError(err, errors.CategoryConfig, "configuration file not readable").
			WithContext("path", path).
			Build()
	}

	cfg.ApplyDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func loadEnvFiles(root string) {
	for _, name := range envFiles {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", "path", p, "error", err)
			continue
		}
		slog.Debug("Loaded environment file", "path", p)
	}
}

// applyEnv overrides fields from the environment, coercing with cast.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvShowErrors); ok && v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return envError(EnvShowErrors, v, err)
		}
		c.SDK.ShowErrors = b
	}
	if v, ok := lookup(EnvPreviewTimeout); ok && v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return envError(EnvPreviewTimeout, v, err)
		}
		c.Preview.Timeout = d
	}
	if v, ok := lookup(EnvNotebookTimeout); ok && v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return envError(EnvNotebookTimeout, v, err)
		}
		c.Notebooks.Timeout = d
	}
	if v, ok := lookup(EnvMaxReleases); ok && v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			return envError(EnvMaxReleases, v, err)
		}
		c.Changelog.MaxReleases = n
	}
	if v, ok := lookup(EnvGitHubToken); ok && v != "" && c.GitHub.Token == "" {
		c.GitHub.Token = v
	}
	return nil
}

func envError(key, value string, err error) error {
	return errors.WrapError(err, errors.CategoryConfig, "invalid environment override").
		WithContext("variable", key).
		WithContext("value", value).
		Build()
}
