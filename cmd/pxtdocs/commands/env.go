package commands

import (
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pxtdocs/internal/config"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/forge"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/metrics"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
)

// env holds what every command needs: the loaded configuration and the
// collaborators built from it.
type env struct {
	root     string
	cfg      *config.Config
	layout   config.Layout
	logger   *slog.Logger
	runner   toolexec.Runner
	github   *forge.GitHubClient
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
}

func (c *CLI) newEnv(g *Global) (*env, error) {
	root, err := filepath.Abs(c.ProjectRoot)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid project root").
			WithContext("path", c.ProjectRoot).
			Build()
	}
	cfg, err := config.Load(root, c.Config)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	e := &env{
		root:     root,
		cfg:      cfg,
		layout:   cfg.Layout(root),
		logger:   logger,
		runner:   toolexec.NewShellRunner(logger),
		recorder: metrics.NoopRecorder{},
	}
	e.github = forge.NewGitHubClient(g.Ctx, cfg.GitHub.Token,
		forge.WithAPIURL(cfg.GitHub.APIURL),
		forge.WithLogger(logger))
	if cfg.Metrics.Textfile != "" {
		e.prom = metrics.NewPrometheusRecorder(prometheus.NewRegistry())
		e.recorder = e.prom
	}
	logger.Debug("Configuration loaded", logfields.Path(root), logfields.Repository(cfg.GitHub.Repo))
	return e, nil
}

// close writes the metrics textfile when configured.
func (e *env) close() {
	if e.prom == nil {
		return
	}
	path := e.cfg.Metrics.Textfile
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.root, path)
	}
	if err := e.prom.WriteTextfile(path); err != nil {
		e.logger.Warn("Failed to write metrics", logfields.Path(path), logfields.Error(err))
	}
}
