// Package config loads pxtdocs.yaml, the optional project configuration.
//
// Every field has a default matching the Pixeltable repository layout, so a
// missing file is a valid configuration.
package config

import "time"

// DefaultFile is looked up in the project root when --config is not given.
const DefaultFile = "pxtdocs.yaml"

// GeneratorMode selects how SDK reference pages are produced.
type GeneratorMode string

const (
	GeneratorBuiltin GeneratorMode = "builtin"
	GeneratorCommand GeneratorMode = "command"
)

// Config is the root of pxtdocs.yaml.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	GitHub    GitHubConfig    `yaml:"github"`
	DocsRepo  DocsRepoConfig  `yaml:"docs_repo"`
	Source    SourceConfig    `yaml:"source_repo"`
	SDK       SDKConfig       `yaml:"sdk"`
	Notebooks NotebooksConfig `yaml:"notebooks"`
	Preview   PreviewConfig   `yaml:"preview"`
	Changelog ChangelogConfig `yaml:"changelog"`
	Git       GitConfig       `yaml:"git"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// PathsConfig locates the docs sources relative to the project root.
type PathsConfig struct {
	MintlifySource string   `yaml:"mintlify_source"`
	OPML           string   `yaml:"opml"`
	Target         string   `yaml:"target"`
	CopyIgnore     []string `yaml:"copy_ignore"`
}

// GitHubConfig configures release and contributor fetching.
type GitHubConfig struct {
	Repo   string `yaml:"repo"`
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url"`
}

// DocsRepoConfig names the hosting repository and its deploy branches.
type DocsRepoConfig struct {
	URL         string `yaml:"url"`
	DevBranch   string `yaml:"dev_branch"`
	StageBranch string `yaml:"stage_branch"`
	ProdBranch  string `yaml:"prod_branch"`
}

// SourceConfig describes how stage deploys check out and install the SDK.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Python string `yaml:"python"`
	// ExtraPackages are pip-installed into the venv after the SDK itself.
	ExtraPackages []string `yaml:"extra_packages"`
}

// SDKConfig configures reference generation.
type SDKConfig struct {
	TabName   string        `yaml:"tab_name"`
	Package   string        `yaml:"package"`
	Generator GeneratorMode `yaml:"generator"`
	// Command is run from the project root in command mode, e.g. ["mintlifier"].
	Command    []string      `yaml:"command"`
	Timeout    time.Duration `yaml:"timeout"`
	ShowErrors bool          `yaml:"show_errors"`
	SourceRef  string        `yaml:"source_ref"`
	Blacklist  []string      `yaml:"blacklist"`
	CacheSize  int           `yaml:"cache_size"`
	// Submodules are the modules validate-api scans besides the package root;
	// empty means the built-in list.
	Submodules []string `yaml:"submodules"`
}

// NotebooksConfig configures notebook conversion.
type NotebooksConfig struct {
	Dir      string        `yaml:"dir"`
	Quarto   string        `yaml:"quarto"`
	Timeout  time.Duration `yaml:"timeout"`
	LinkBase string        `yaml:"link_base"`
}

// PreviewConfig configures the Mintlify dev-server probe.
type PreviewConfig struct {
	Enabled *bool         `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
	Port    int           `yaml:"port"`
}

// IsEnabled reports whether validation probes run; true unless disabled.
func (p PreviewConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// ChangelogConfig bounds the release fetch.
type ChangelogConfig struct {
	MaxReleases int `yaml:"max_releases"`
}

// GitConfig sets the author of deploy commits.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// WorkspaceConfig controls scratch directories of deploys.
type WorkspaceConfig struct {
	BaseDir string `yaml:"base_dir"`
	Keep    bool   `yaml:"keep"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}
