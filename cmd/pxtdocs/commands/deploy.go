package commands

import (
	"git.home.luguber.info/inful/pxtdocs/internal/deploy"
)

// DeployDevCmd implements the 'deploy-dev' command.
type DeployDevCmd struct {
	SkipFlags `embed:""`

	Version string `help:"Version label for the SDK pages (default: highest v* tag of the project, else latest only)"`
}

func (d *DeployDevCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.deployer().Dev(g.Ctx, deploy.DevOptions{Version: d.Version, Skip: d.SkipFlags.buildSkip()})
	if res != nil && res.Build != nil {
		printBuildSummary(g.Out, res.Build, err)
	}
	printDeploySummary(g.Out, res, err)
	return err
}

// DeployStageCmd implements the 'deploy-stage' command.
type DeployStageCmd struct {
	SkipFlags `embed:""`

	Version    string `required:"" help:"Release tag to deploy, e.g. v0.4.17"`
	KeepLatest bool   `name:"keep-latest" help:"Also publish the pages as the \"latest\" dropdown"`
}

func (d *DeployStageCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.deployer().Stage(g.Ctx, deploy.StageOptions{
		Version:    d.Version,
		KeepLatest: d.KeepLatest,
		Skip:       d.SkipFlags.buildSkip(),
	})
	printDeploySummary(g.Out, res, err)
	return err
}

// DeployProdCmd implements the 'deploy-prod' command.
type DeployProdCmd struct{}

func (d *DeployProdCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.deployer().Prod(g.Ctx)
	printDeploySummary(g.Out, res, err)
	return err
}

func (e *env) deployer() *deploy.Deployer {
	return deploy.NewDeployer(e.cfg, e.root, deploy.Deps{
		Runner:   e.runner,
		GitHub:   e.github,
		Recorder: e.recorder,
		Logger:   e.logger,
	})
}
