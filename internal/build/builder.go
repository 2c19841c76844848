package build

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pxtdocs/internal/config"
	"git.home.luguber.info/inful/pxtdocs/internal/content"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/metrics"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
)

// RunKind labels build runs in metrics.
const RunKind = "build"

// GitHubSource supplies releases and contributors.
type GitHubSource interface {
	content.ReleaseLister
	content.ContributorLister
}

// Skip disables optional stages.
type Skip struct {
	Notebooks    bool
	Changelog    bool
	Contributors bool
}

// Options tune one build.
type Options struct {
	// ShowErrors renders placeholder pages for SDK items that fail to resolve.
	ShowErrors bool
	// LenientGenerator downgrades SDK generation failures to warnings.
	LenientGenerator bool
	// StrictValidation makes validation findings fatal.
	StrictValidation bool
	// SkipValidation leaves out the validate stage, for callers that
	// validate the deployed tree themselves.
	SkipValidation bool
	Skip           Skip
	// RunID tags log lines; a new one is generated when empty.
	RunID string
}

// Deps are the collaborators a Builder talks to.
type Deps struct {
	Runner   toolexec.Runner
	GitHub   GitHubSource
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Builder builds the site of one project root.
type Builder struct {
	cfg    *config.Config
	layout config.Layout
	deps   Deps
}

// NewBuilder creates a builder for the project at root.
func NewBuilder(cfg *config.Config, root string, deps Deps) *Builder {
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Builder{cfg: cfg, layout: cfg.Layout(root), deps: deps}
}

// Layout returns the resolved project paths.
func (b *Builder) Layout() config.Layout { return b.layout }

// buildState carries mutable state across stages.
type buildState struct {
	*Builder
	opts     Options
	report   *Report
	logger   *slog.Logger
	recorder metrics.Recorder
}

// CheckPreconditions verifies the project holds the Mintlify source, its
// docs.json and the API outline.
func (b *Builder) CheckPreconditions() error {
	for _, p := range []struct{ path, what string }{
		{b.layout.Source, "Mintlify source directory"},
		{b.layout.DocsJSON(), "docs.json"},
		{b.layout.OPML, "public API outline"},
	} {
		if _, err := os.Stat(p.path); err != nil {
			return errors.ConfigError(p.what+" not found").
				WithCause(err).
				WithContext("path", p.path).
				Fatal().
				Build()
		}
	}
	return nil
}

// Build runs the pipeline. The report is returned even when a stage fails.
func (b *Builder) Build(ctx context.Context, opts Options) (*Report, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if err := b.CheckPreconditions(); err != nil {
		return nil, err
	}

	bs := &buildState{
		Builder:  b,
		opts:     opts,
		report:   newReport(opts.RunID),
		logger:   b.deps.Logger.With(logfields.RunID(opts.RunID)),
		recorder: b.deps.Recorder,
	}
	bs.logger.Info("Building documentation", logfields.Path(b.layout.Root), logfields.Target(b.layout.Target))

	err := runStages(ctx, bs, b.stages(opts))
	bs.report.finish()
	b.deps.Recorder.ObserveRunDuration(RunKind, bs.report.Duration())
	b.deps.Recorder.IncRunOutcome(RunKind, bs.report.Outcome())

	attrs := []any{
		logfields.DurationMS(float64(bs.report.Duration().Milliseconds())),
		slog.String("outcome", string(bs.report.Outcome())),
		slog.Int("warnings", len(bs.report.Warnings)),
	}
	if err != nil {
		bs.logger.Error("Build failed", append(attrs, logfields.Error(err))...)
		return bs.report, err
	}
	bs.logger.Info("Build finished", attrs...)
	return bs.report, nil
}

func (b *Builder) stages(opts Options) []stageDef {
	stages := []stageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageCopySource, stageCopySource},
		{StageConvertNotebooks, stageConvertNotebooks},
		{StageChangelog, stageChangelog},
		{StageContributors, stageContributors},
		{StageGenerateSDK, stageGenerateSDK},
	}
	if !opts.SkipValidation {
		stages = append(stages, stageDef{StageValidate, stageValidate})
	}
	return stages
}

