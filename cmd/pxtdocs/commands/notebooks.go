package commands

import (
	"fmt"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/notebooks"
)

// ConvertNotebooksCmd implements the 'convert-notebooks' command.
type ConvertNotebooksCmd struct {
	Output string `short:"o" help:"Output directory for the pages (default: <target>/notebooks)"`
}

func (c *ConvertNotebooksCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	out := outputDir(c.Output, e.layout.Target, build.NotebooksDir)
	res, err := notebooks.NewConverter(e.runner, notebooks.Options{
		Dir:       e.layout.Notebooks,
		OutputDir: out,
		RepoRoot:  e.root,
		LinkBase:  e.cfg.Notebooks.LinkBase,
		Quarto:    e.cfg.Notebooks.Quarto,
		Timeout:   e.cfg.Notebooks.Timeout,
	}, e.logger).Convert(g.Ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, box("Notebooks", []row{
		{"Notebooks", fmt.Sprint(res.Notebooks)},
		{"Pages", fmt.Sprint(res.Pages)},
		{"Enhanced", fmt.Sprint(res.Enhanced)},
		{"Output", out},
	}, res.Skipped))
	return nil
}
