package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/git"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

// StageOptions tune a stage deploy.
type StageOptions struct {
	// Version is the release tag to build and publish. Required.
	Version string
	// KeepLatest also publishes the pages as the "latest" dropdown.
	KeepLatest bool
	Skip       build.Skip
}

// StageCommitMessage is the commit message of a stage deploy.
func StageCommitMessage(v versioning.Version, sha string) string {
	if len(sha) > 8 {
		sha = sha[:8]
	}
	return fmt.Sprintf("Deploy documentation %s from %s", v.Full, sha)
}

// Stage builds the release tag in an isolated clone and environment, merges
// its SDK reference into the deployed navigation and pushes the stage branch.
// Generator failures and validation findings are fatal.
func (d *Deployer) Stage(ctx context.Context, opts StageOptions) (res *Result, err error) {
	r := d.newRun(TargetStage, d.cfg.DocsRepo.StageBranch)
	defer func() { r.finish(err) }()

	if opts.Version == "" {
		return r.result, errors.ValidationError("stage deploys require a version").Build()
	}
	pv, err := parseVersion(opts.Version)
	if err != nil {
		return r.result, err
	}
	v := *pv
	r.result.Version = v.Full
	r.logger = r.logger.With(logfields.Version(v.Full))
	r.logger.Info("Deploying documentation to stage", slog.Bool("keep_latest", opts.KeepLatest))

	if err := r.ws.Create(); err != nil {
		return r.result, err
	}
	srcDir, err := r.ws.Subdir("source")
	if err != nil {
		return r.result, err
	}
	source, err := r.clone(ctx, git.CloneOptions{URL: d.cfg.Source.URL, Dir: srcDir, Tag: v.Full})
	if err != nil {
		return r.result, err
	}
	sha, err := source.HeadSHA()
	if err != nil {
		return r.result, err
	}

	runner, err := r.installVenv(ctx, srcDir)
	if err != nil {
		return r.result, err
	}

	builder := build.NewBuilder(d.cfg, srcDir, build.Deps{
		Runner:   runner,
		GitHub:   d.deps.GitHub,
		Recorder: d.deps.Recorder,
		Logger:   d.deps.Logger,
	})
	report, err := builder.Build(ctx, build.Options{
		ShowErrors:     false,
		SkipValidation: true,
		Skip:           opts.Skip,
		RunID:          r.result.RunID,
	})
	r.result.Build = report
	if err != nil {
		return r.result, err
	}
	layout := builder.Layout()

	repo, err := r.cloneStageBranch(ctx)
	if err != nil {
		return r.result, err
	}
	docsJSON := filepath.Join(repo.Dir(), "docs.json")

	prod, err := manifest.LoadOptional(docsJSON)
	if err != nil {
		return r.result, err
	}
	local, err := manifest.Load(layout.DocsJSON())
	if err != nil {
		return r.result, err
	}
	generated, err := manifest.Load(layout.TargetDocsJSON())
	if err != nil {
		return r.result, err
	}
	merged, mr, err := manifest.Merge(prod, local, generated, manifest.MergeOptions{
		TabName:    d.cfg.SDK.TabName,
		Version:    &v,
		KeepLatest: opts.KeepLatest,
	})
	if err != nil {
		return r.result, err
	}
	r.result.Merge = mr
	r.logger.Info("Merged navigation",
		slog.Any("dropdowns", mr.Dropdowns),
		slog.Any("evicted", mr.Evicted),
		slog.Bool("redeployed", mr.Redeployed),
		slog.Bool("first_deploy", mr.FirstDeploy))

	before, err := FingerprintPages(repo.Dir())
	if err != nil {
		return r.result, err
	}
	if err := syncStageTree(layout.Target, repo.Dir(), v, opts.KeepLatest, mr.Evicted); err != nil {
		return r.result, err
	}
	if err := merged.Save(docsJSON); err != nil {
		return r.result, err
	}
	after, err := FingerprintPages(repo.Dir())
	if err != nil {
		return r.result, err
	}
	r.result.Diff = ComparePages(before, after)
	logDiff(r.logger, r.result.Diff)

	if err := r.validate(ctx, runner, repo.Dir(), true); err != nil {
		return r.result, err
	}
	return r.result, r.publish(ctx, repo, r.result.Branch, StageCommitMessage(v, sha))
}

// installVenv creates a virtualenv in the workspace, installs the cloned
// package into it and returns a runner that finds its tools first.
func (r *run) installVenv(ctx context.Context, srcDir string) (toolexec.Runner, error) {
	venv := filepath.Join(r.ws.Path(), "venv")
	if _, err := r.deps.Runner.Run(ctx, toolexec.Command{
		Name: r.cfg.Source.Python,
		Args: []string{"-m", "venv", venv},
	}); err != nil {
		return nil, errors.WrapError(err, errors.CategoryTool, "failed to create virtualenv").
			WithContext("path", venv).
			Build()
	}
	runner := toolexec.WithPathPrefix(r.deps.Runner, filepath.Join(venv, "bin"))

	args := append([]string{"install", "-q", srcDir}, r.cfg.Source.ExtraPackages...)
	if _, err := runner.Run(ctx, toolexec.Command{Name: "pip", Args: args}); err != nil {
		return nil, errors.WrapError(err, errors.CategoryTool, "failed to install package").
			WithContext("path", srcDir).
			Build()
	}
	r.logger.Info("Installed package into virtualenv", logfields.Path(venv))
	return runner, nil
}

// cloneStageBranch clones the stage branch, or starts it from the default
// branch when it does not exist yet.
func (r *run) cloneStageBranch(ctx context.Context) (*git.Repo, error) {
	branch := r.result.Branch
	exists, err := git.RemoteBranchExists(ctx, r.cfg.DocsRepo.URL, branch, r.cfg.GitHub.Token)
	if err != nil {
		return nil, err
	}
	if exists {
		return r.cloneDocs(ctx, "docs", branch)
	}
	r.logger.Info("Branch does not exist; creating it from the default branch", logfields.Branch(branch))
	repo, err := r.cloneDocs(ctx, "docs", "")
	if err != nil {
		return nil, err
	}
	if err := repo.CheckoutNewBranch(branch); err != nil {
		return nil, err
	}
	return repo, nil
}
