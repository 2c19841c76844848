package build

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/pxtdocs/internal/config"
	"git.home.luguber.info/inful/pxtdocs/internal/content"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/notebooks"
	"git.home.luguber.info/inful/pxtdocs/internal/sdkref"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
	"git.home.luguber.info/inful/pxtdocs/internal/workspace"
)

// Site-relative output locations.
const (
	SDKLatestDir    = "sdk/latest"
	ChangelogDir    = "changelog"
	ContributorsDir = "community"
	NotebooksDir    = "notebooks"
)

func (bs *buildState) target(rel string) string {
	return filepath.Join(bs.layout.Target, filepath.FromSlash(rel))
}

func stagePrepareOutput(_ context.Context, bs *buildState) error {
	return workspace.Reset(bs.layout.Target)
}

func stageCopySource(_ context.Context, bs *buildState) error {
	n, err := workspace.CopyTree(bs.layout.Source, bs.layout.Target, workspace.CopyOptions{
		SkipHidden: true,
		Ignore:     bs.cfg.Paths.CopyIgnore,
	})
	bs.report.FilesCopied = n
	if err != nil {
		return err
	}
	bs.logger.Info("Copied Mintlify source", logfields.Path(bs.layout.Source), logfields.Count(n))
	return nil
}

func stageConvertNotebooks(ctx context.Context, bs *buildState) error {
	if bs.opts.Skip.Notebooks {
		return errSkipped
	}
	conv := notebooks.NewConverter(bs.deps.Runner, notebooks.Options{
		Dir:       bs.layout.Notebooks,
		OutputDir: bs.target(NotebooksDir),
		RepoRoot:  bs.layout.Root,
		LinkBase:  bs.cfg.Notebooks.LinkBase,
		Quarto:    bs.cfg.Notebooks.Quarto,
		Timeout:   bs.cfg.Notebooks.Timeout,
	}, bs.logger)
	res, err := conv.Convert(ctx)
	if err != nil {
		return err
	}
	bs.report.Notebooks = res.Pages
	if len(res.Skipped) > 0 {
		return newWarnStageError(StageConvertNotebooks,
			errors.ValidationError("some notebook pages were left without links").
				WithContext("pages", res.Skipped).
				Warning().
				Build())
	}
	return nil
}

func stageChangelog(ctx context.Context, bs *buildState) error {
	if bs.opts.Skip.Changelog {
		return errSkipped
	}
	if bs.deps.GitHub == nil {
		return newWarnStageError(StageChangelog, errors.ConfigError("no GitHub client configured").Build())
	}
	n, err := content.WriteChangelog(ctx, bs.deps.GitHub, bs.target(ChangelogDir), bs.cfg.Changelog.MaxReleases,
		content.ChangelogOptions{Repo: bs.cfg.GitHub.Repo}, bs.logger)
	bs.report.Releases = n
	return err
}

func stageContributors(ctx context.Context, bs *buildState) error {
	if bs.opts.Skip.Contributors {
		return errSkipped
	}
	if bs.deps.GitHub == nil {
		return newWarnStageError(StageContributors, errors.ConfigError("no GitHub client configured").Build())
	}
	n, err := content.WriteContributors(ctx, bs.deps.GitHub, bs.target(ContributorsDir),
		content.ContributorsOptions{Repo: bs.cfg.GitHub.Repo}, bs.logger)
	bs.report.Contributors = n
	return err
}

func stageGenerateSDK(ctx context.Context, bs *buildState) error {
	var err error
	if bs.cfg.SDK.Generator == config.GeneratorCommand {
		err = runGeneratorCommand(ctx, bs)
	} else {
		err = runBuiltinGenerator(ctx, bs)
	}
	if err == nil {
		bs.recorder.SetPagesGenerated(bs.report.SDKPages)
		return nil
	}
	if bs.opts.LenientGenerator && ctx.Err() == nil {
		return newWarnStageError(StageGenerateSDK, err)
	}
	return err
}

func runBuiltinGenerator(ctx context.Context, bs *buildState) error {
	gen, err := sdkref.NewGenerator(sdkref.Options{
		OPMLPath:   bs.layout.OPML,
		SourceRoot: bs.layout.Root,
		OutputDir:  bs.target(SDKLatestDir),
		NavPrefix:  SDKLatestDir,
		TabName:    bs.cfg.SDK.TabName,
		GitHubRepo: bs.cfg.GitHub.Repo,
		SourceRef:  bs.cfg.SDK.SourceRef,
		ShowErrors: bs.opts.ShowErrors,
		Blacklist:  bs.cfg.SDK.Blacklist,
		CacheSize:  bs.cfg.SDK.CacheSize,
	}, bs.logger)
	if err != nil {
		return err
	}
	res, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	bs.report.SDKPages = len(res.Pages)
	bs.report.Unresolved = res.Unresolved

	docsJSON := bs.layout.TargetDocsJSON()
	m, err := manifest.Load(docsJSON)
	if err != nil {
		return err
	}
	action := manifest.UpdateNavigation(m, res.Tab)
	if err := m.Save(docsJSON); err != nil {
		return err
	}
	bs.logger.Info("Updated navigation", logfields.Path(docsJSON), logfields.Target(bs.cfg.SDK.TabName),
		"action", string(action))
	return nil
}

// runGeneratorCommand runs an external generator such as mintlifier from the
// project root. It must write target/sdk/latest and update target/docs.json.
func runGeneratorCommand(ctx context.Context, bs *buildState) error {
	argv := bs.cfg.SDK.Command
	args := slices.Clone(argv[1:])
	if !bs.opts.ShowErrors {
		args = append(args, "--no-errors")
	}
	if _, err := bs.deps.Runner.Run(ctx, toolexec.Command{
		Name:    argv[0],
		Args:    args,
		Dir:     bs.layout.Root,
		Timeout: bs.cfg.SDK.Timeout,
	}); err != nil {
		return err
	}

	dir := bs.target(SDKLatestDir)
	if _, err := os.Stat(dir); err != nil {
		return errors.ToolError("SDK generator produced no output").
			WithContext("tool", argv[0]).
			WithContext("path", dir).
			Build()
	}
	pages, err := doublestar.Glob(os.DirFS(dir), "**/*.mdx", doublestar.WithFilesOnly())
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to list SDK pages").Build()
	}
	bs.report.SDKPages = len(pages)
	bs.logger.Info("SDK generator finished", logfields.Tool(argv[0]), logfields.Count(len(pages)))
	return nil
}

func stageValidate(ctx context.Context, bs *buildState) error {
	v, err := NewValidator(bs.cfg, bs.deps.Runner, bs.logger).Validate(ctx, bs.layout.Target)
	if err != nil {
		return err
	}
	bs.report.Findings = v.All()
	if verr := v.Err(); verr != nil {
		if bs.opts.StrictValidation {
			return newFatalStageError(StageValidate, verr)
		}
		return newWarnStageError(StageValidate, verr)
	}
	if len(v.Advisory) > 0 {
		return newWarnStageError(StageValidate, errors.ToolError(v.Advisory[0]).Warning().Build())
	}
	return nil
}
