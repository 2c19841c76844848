package commands

import (
	"git.home.luguber.info/inful/pxtdocs/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SkipFlags `embed:""`

	Watch      bool `short:"w" help:"Rebuild whenever the sources change"`
	ShowErrors bool `name:"show-errors" help:"Render placeholder pages for SDK items that cannot be documented"`
	Strict     bool `help:"Fail the build on validation findings"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	builder := build.NewBuilder(e.cfg, e.root, build.Deps{
		Runner:   e.runner,
		GitHub:   e.github,
		Recorder: e.recorder,
		Logger:   e.logger,
	})
	opts := build.Options{
		ShowErrors:       b.ShowErrors || e.cfg.SDK.ShowErrors,
		StrictValidation: b.Strict,
		Skip:             b.SkipFlags.buildSkip(),
	}
	if b.Watch {
		return builder.Watch(g.Ctx, build.WatchOptions{
			Build: opts,
			OnBuild: func(r *build.Report, err error) {
				printBuildSummary(g.Out, r, err)
			},
		})
	}
	report, err := builder.Build(g.Ctx, opts)
	printBuildSummary(g.Out, report, err)
	return err
}

func (f SkipFlags) buildSkip() build.Skip {
	return build.Skip{
		Notebooks:    f.NoNotebooks,
		Changelog:    f.NoChangelog,
		Contributors: f.NoContributors,
	}
}
