package config

import (
	"time"

	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
)

// DefaultApplier fills unset values for one configuration section.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

type pathsDefaults struct{}

func (pathsDefaults) Domain() string { return "paths" }

func (pathsDefaults) ApplyDefaults(cfg *Config) {
	p := &cfg.Paths
	setString(&p.MintlifySource, "docs/mintlify")
	setString(&p.OPML, "docs/public_api.opml")
	setString(&p.Target, "docs/target")
}

type githubDefaults struct{}

func (githubDefaults) Domain() string { return "github" }

func (githubDefaults) ApplyDefaults(cfg *Config) {
	setString(&cfg.GitHub.Repo, "pixeltable/pixeltable")
	setString(&cfg.GitHub.APIURL, "https://api.github.com")
	setString(&cfg.DocsRepo.URL, "https://github.com/pixeltable/pixeltable-docs-www.git")
	setString(&cfg.DocsRepo.DevBranch, "dev")
	setString(&cfg.DocsRepo.StageBranch, "stage")
	setString(&cfg.DocsRepo.ProdBranch, "main")
	setString(&cfg.Source.URL, "https://github.com/pixeltable/pixeltable.git")
	setString(&cfg.Source.Python, "python3")
	if cfg.Changelog.MaxReleases == 0 {
		cfg.Changelog.MaxReleases = 50
	}
}

type sdkDefaults struct{}

func (sdkDefaults) Domain() string { return "sdk" }

func (sdkDefaults) ApplyDefaults(cfg *Config) {
	s := &cfg.SDK
	setString(&s.TabName, manifest.DefaultSDKTab)
	setString(&s.Package, "pixeltable")
	if s.Generator == "" {
		s.Generator = GeneratorBuiltin
	}
	if s.Generator == GeneratorCommand && len(s.Command) == 0 {
		s.Command = []string{"mintlifier"}
	}
	if s.Timeout == 0 {
		s.Timeout = 10 * time.Minute
	}
	setString(&s.SourceRef, "main")
}

type toolDefaults struct{}

func (toolDefaults) Domain() string { return "tools" }

func (toolDefaults) ApplyDefaults(cfg *Config) {
	n := &cfg.Notebooks
	setString(&n.Dir, "docs/notebooks")
	setString(&n.Quarto, "quarto")
	if n.Timeout == 0 {
		n.Timeout = 5 * time.Minute
	}
	setString(&n.LinkBase, "https://github.com/pixeltable/pixeltable/blob/release")

	if cfg.Preview.Timeout == 0 {
		cfg.Preview.Timeout = 5 * time.Second
	}
	if cfg.Preview.Port == 0 {
		cfg.Preview.Port = 3001
	}
	setString(&cfg.Git.AuthorName, "pxtdocs")
	setString(&cfg.Git.AuthorEmail, "pxtdocs@users.noreply.github.com")
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{pathsDefaults{}, githubDefaults{}, sdkDefaults{}, toolDefaults{}}
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	for _, a := range defaultAppliers() {
		a.ApplyDefaults(c)
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
