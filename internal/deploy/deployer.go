package deploy

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/config"
	"git.home.luguber.info/inful/pxtdocs/internal/git"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/metrics"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
	"git.home.luguber.info/inful/pxtdocs/internal/workspace"
)

// Target names a deploy environment.
type Target string

const (
	TargetDev   Target = "dev"
	TargetStage Target = "stage"
	TargetProd  Target = "prod"
)

// RunKind is the metrics label of a deploy to t.
func (t Target) RunKind() string { return "deploy-" + string(t) }

// Deps are the collaborators a Deployer talks to.
type Deps struct {
	Runner   toolexec.Runner
	GitHub   build.GitHubSource
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Result describes a finished deploy.
type Result struct {
	RunID   string
	Target  Target
	Branch  string
	Version string
	// Commit is the pushed commit, empty when there was nothing to deploy.
	Commit   string
	Build    *build.Report
	Merge    *manifest.MergeReport
	Diff     PageDiff
	Findings []string
	// History holds the newest commits of the branch after a prod deploy.
	History []git.CommitInfo
}

// Changed reports whether the deploy pushed a commit.
func (r *Result) Changed() bool { return r.Commit != "" }

// Deployer runs deploys for the project at root.
type Deployer struct {
	cfg  *config.Config
	root string
	deps Deps
}

// NewDeployer creates a deployer.
func NewDeployer(cfg *config.Config, root string, deps Deps) *Deployer {
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Deployer{cfg: cfg, root: root, deps: deps}
}

// run carries the state of one deploy.
type run struct {
	*Deployer
	result *Result
	logger *slog.Logger
	ws     *workspace.Manager
	start  time.Time
}

func (d *Deployer) newRun(target Target, branch string) *run {
	id := uuid.NewString()
	logger := d.deps.Logger.With(logfields.RunID(id), logfields.Target(string(target)))
	return &run{
		Deployer: d,
		result:   &Result{RunID: id, Target: target, Branch: branch},
		logger:   logger,
		ws:       workspace.NewManager(d.cfg.Workspace.BaseDir, logger).KeepOnCleanup(d.cfg.Workspace.Keep),
		start:    time.Now(),
	}
}

// finish records metrics and logs the outcome.
func (r *run) finish(err error) {
	if cerr := r.ws.Cleanup(); cerr != nil {
		r.logger.Warn("Workspace cleanup failed", logfields.Error(cerr))
	}
	kind := r.result.Target.RunKind()
	dur := time.Since(r.start)
	r.deps.Recorder.ObserveRunDuration(kind, dur)

	outcome := metrics.OutcomeSuccess
	switch {
	case err != nil:
		outcome = metrics.OutcomeFailed
	case !r.result.Changed():
		outcome = metrics.OutcomeUnchanged
	case r.result.Build != nil && len(r.result.Build.Warnings) > 0:
		outcome = metrics.OutcomeWarning
	}
	r.deps.Recorder.IncRunOutcome(kind, outcome)

	attrs := []any{
		logfields.Branch(r.result.Branch),
		logfields.DurationMS(float64(dur.Milliseconds())),
		slog.String("outcome", string(outcome)),
	}
	if err != nil {
		r.logger.Error("Deploy failed", append(attrs, logfields.Error(err))...)
		return
	}
	r.logger.Info("Deploy finished", attrs...)
}

// cloneDocs clones branch of the docs repository into the workspace.
func (r *run) cloneDocs(ctx context.Context, name, branch string) (*git.Repo, error) {
	dir, err := r.ws.Subdir(name)
	if err != nil {
		return nil, err
	}
	return r.clone(ctx, git.CloneOptions{URL: r.cfg.DocsRepo.URL, Dir: dir, Branch: branch})
}

func (r *run) clone(ctx context.Context, opts git.CloneOptions) (*git.Repo, error) {
	opts.Token = r.cfg.GitHub.Token
	start := time.Now()
	repo, err := git.Clone(ctx, opts, r.logger)
	r.deps.Recorder.ObserveCloneDuration(opts.URL, time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return repo.WithAuthor(git.Signature{Name: r.cfg.Git.AuthorName, Email: r.cfg.Git.AuthorEmail}), nil
}

// publish commits every change in repo and pushes branch. It does nothing
// when the working tree is clean.
func (r *run) publish(ctx context.Context, repo *git.Repo, branch, message string) error {
	n, err := repo.StageAll()
	if err != nil {
		return err
	}
	if n == 0 {
		r.logger.Info("No changes to deploy", logfields.Branch(branch))
		return nil
	}
	sha, err := repo.Commit(message)
	if err != nil {
		return err
	}
	r.logger.Info("Committed changes", logfields.Commit(sha[:8]), logfields.Count(n), slog.String("message", message))
	if err := repo.Push(ctx, branch); err != nil {
		return err
	}
	r.result.Commit = sha
	r.logger.Info("Pushed", logfields.Branch(branch), logfields.Commit(sha[:8]))
	return nil
}

// validate checks a deploy tree. Findings are returned as a validation
// error when strict.
func (r *run) validate(ctx context.Context, runner toolexec.Runner, dir string, strict bool) error {
	v, err := build.NewValidator(r.cfg, runner, r.logger).Validate(ctx, dir)
	if err != nil {
		return err
	}
	r.result.Findings = v.All()
	if !strict {
		return nil
	}
	return v.Err()
}
