package deploy

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/git"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

// DevCommitMessage is the commit message of dev deploys.
const DevCommitMessage = "Deploy dev documentation for pre-release validation"

// DevOptions tune a dev deploy.
type DevOptions struct {
	// Version labels the SDK pages; the highest v* tag of the project
	// repository is used when empty. Without either only sdk/latest is
	// published.
	Version string
	Skip    build.Skip
}

// Dev builds the working copy with every error surfaced and publishes it
// to the dev branch for review. Generator failures and validation findings
// do not stop it.
func (d *Deployer) Dev(ctx context.Context, opts DevOptions) (res *Result, err error) {
	r := d.newRun(TargetDev, d.cfg.DocsRepo.DevBranch)
	defer func() { r.finish(err) }()

	v, err := d.devVersion(opts.Version)
	if err != nil {
		return r.result, err
	}
	if v != nil {
		r.result.Version = v.Full
		r.logger = r.logger.With(logfields.Version(v.Full))
	}
	r.logger.Info("Deploying dev documentation")

	builder := build.NewBuilder(d.cfg, d.root, build.Deps{
		Runner:   d.deps.Runner,
		GitHub:   d.deps.GitHub,
		Recorder: d.deps.Recorder,
		Logger:   d.deps.Logger,
	})
	report, err := builder.Build(ctx, build.Options{
		ShowErrors:       true,
		LenientGenerator: true,
		Skip:             opts.Skip,
		RunID:            r.result.RunID,
	})
	r.result.Build = report
	if err != nil {
		return r.result, err
	}
	if report != nil {
		r.result.Findings = report.Findings
	}
	layout := builder.Layout()

	if err := r.ws.Create(); err != nil {
		return r.result, err
	}
	repo, err := r.cloneDocs(ctx, "docs", r.result.Branch)
	if err != nil {
		return r.result, err
	}
	before, err := FingerprintPages(repo.Dir())
	if err != nil {
		return r.result, err
	}

	generated, err := manifest.Load(layout.TargetDocsJSON())
	if err != nil {
		return r.result, err
	}
	merged, mr, err := manifest.Merge(nil, generated, generated, manifest.MergeOptions{
		TabName:    d.cfg.SDK.TabName,
		Version:    v,
		KeepLatest: true,
	})
	if err != nil {
		return r.result, err
	}
	r.result.Merge = mr

	if err := syncDevTree(layout.Target, repo.Dir(), v); err != nil {
		return r.result, err
	}
	if err := merged.Save(filepath.Join(repo.Dir(), "docs.json")); err != nil {
		return r.result, err
	}

	after, err := FingerprintPages(repo.Dir())
	if err != nil {
		return r.result, err
	}
	r.result.Diff = ComparePages(before, after)
	logDiff(r.logger, r.result.Diff)

	return r.result, r.publish(ctx, repo, r.result.Branch, DevCommitMessage)
}

// devVersion picks the explicit version or the newest release tag. It
// returns nil when neither exists.
func (d *Deployer) devVersion(explicit string) (*versioning.Version, error) {
	if explicit != "" {
		return parseVersion(explicit)
	}
	repo, err := git.Open(d.root, d.deps.Logger)
	if err != nil {
		d.deps.Logger.Info("No version given and the project is not a git repository; publishing latest only",
			logfields.Path(d.root), logfields.Error(err))
		return nil, nil
	}
	tag, ok, err := repo.HighestVersionTag()
	if err != nil {
		return nil, err
	}
	if !ok {
		d.deps.Logger.Info("No version given and no v* tag found; publishing latest only", logfields.Path(d.root))
		return nil, nil
	}
	return parseVersion(tag)
}

func parseVersion(s string) (*versioning.Version, error) {
	v, err := versioning.Parse(s)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid version").
			WithContext("version", s).
			Build()
	}
	return &v, nil
}
