package config

import (
	"slices"

	"git.home.luguber.info/inful/pxtdocs/internal/forge"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// Validate reports the first invalid setting as a config error.
func (c *Config) Validate() error {
	if c.SDK.TabName == "" {
		return invalid("sdk.tab_name", "must not be empty", "")
	}
	if !slices.Contains([]GeneratorMode{GeneratorBuiltin, GeneratorCommand}, c.SDK.Generator) {
		return invalid("sdk.generator", "must be builtin or command", string(c.SDK.Generator))
	}
	if c.SDK.Generator == GeneratorCommand && len(c.SDK.Command) == 0 {
		return invalid("sdk.command", "required in command mode", "")
	}
	for key, d := range map[string]int64{
		"sdk.timeout":       int64(c.SDK.Timeout),
		"notebooks.timeout": int64(c.Notebooks.Timeout),
		"preview.timeout":   int64(c.Preview.Timeout),
	} {
		if d < 0 {
			return invalid(key, "must not be negative", "")
		}
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return invalid("preview.port", "out of range", "")
	}
	if c.Changelog.MaxReleases < 0 {
		return invalid("changelog.max_releases", "must not be negative", "")
	}
	if err := forge.ValidateRepo(c.GitHub.Repo); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid configuration").
			WithContext("field", "github.repo").
			Build()
	}
	for _, b := range []struct{ key, v string }{
		{"docs_repo.dev_branch", c.DocsRepo.DevBranch},
		{"docs_repo.stage_branch", c.DocsRepo.StageBranch},
		{"docs_repo.prod_branch", c.DocsRepo.ProdBranch},
	} {
		if b.v == "" {
			return invalid(b.key, "must not be empty", "")
		}
	}
	return nil
}

func invalid(field, reason, value string) error {
	b := errors.ConfigError("invalid configuration: " + field + " " + reason).
		WithContext("field", field)
	if value != "" {
		b.WithContext("value", value)
	}
	return b.Build()
}
