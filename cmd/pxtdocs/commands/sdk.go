package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/pysource"
	"git.home.luguber.info/inful/pxtdocs/internal/sdkref"
)

// GenerateSDKCmd implements the 'generate-sdk' command.
type GenerateSDKCmd struct {
	Output     string `short:"o" help:"Output directory for the pages (default: <target>/sdk/latest)"`
	ShowErrors bool   `name:"show-errors" help:"Render placeholder pages for SDK items that cannot be documented"`
}

func (c *GenerateSDKCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	out := outputDir(c.Output, e.layout.Target, build.SDKLatestDir)
	gen, err := sdkref.NewGenerator(sdkref.Options{
		OPMLPath:   e.layout.OPML,
		SourceRoot: e.root,
		OutputDir:  out,
		NavPrefix:  build.SDKLatestDir,
		TabName:    e.cfg.SDK.TabName,
		GitHubRepo: e.cfg.GitHub.Repo,
		SourceRef:  e.cfg.SDK.SourceRef,
		ShowErrors: c.ShowErrors || e.cfg.SDK.ShowErrors,
		Blacklist:  e.cfg.SDK.Blacklist,
		CacheSize:  e.cfg.SDK.CacheSize,
	}, e.logger)
	if err != nil {
		return err
	}
	res, err := gen.Generate(g.Ctx)
	if err != nil {
		return err
	}
	e.recorder.SetPagesGenerated(len(res.Pages))

	rows := []row{
		{"Pages", fmt.Sprint(len(res.Pages))},
		{"Unresolved", fmt.Sprint(len(res.Unresolved))},
		{"Output", out},
	}
	docsJSON := e.layout.TargetDocsJSON()
	m, err := manifest.LoadOptional(docsJSON)
	if err != nil {
		return err
	}
	if m != nil {
		action := manifest.UpdateNavigation(m, res.Tab)
		if err := m.Save(docsJSON); err != nil {
			return err
		}
		e.logger.Info("Updated navigation", logfields.Path(docsJSON), "action", string(action))
		rows = append(rows, row{"Navigation", string(action) + " in " + docsJSON})
	}
	_, _ = fmt.Fprintln(g.Out, box("SDK reference", rows, res.Unresolved))
	return nil
}

// ValidateAPICmd implements the 'validate-api' command.
type ValidateAPICmd struct {
	Strict bool `help:"Exit non-zero when the outline misses public items"`
}

func (c *ValidateAPICmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	doc, err := sdkref.LoadOPML(e.layout.OPML)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to read public API outline").
			WithContext("path", e.layout.OPML).
			Build()
	}
	ix, err := pysource.NewIndex(e.root, e.cfg.SDK.CacheSize)
	if err != nil {
		return err
	}
	submodules := e.cfg.SDK.Submodules
	if len(submodules) == 0 {
		submodules = sdkref.DefaultModules
	}
	report, err := sdkref.CheckAPI(g.Ctx, ix, doc, e.cfg.SDK.Package, submodules)
	if err != nil {
		return err
	}

	var notes []string
	for _, p := range report.MissingFromOPML {
		notes = append(notes, "missing from outline: "+p)
	}
	for _, p := range report.NotInCode {
		notes = append(notes, "not in code: "+p)
	}
	for _, p := range report.EmptyModules {
		notes = append(notes, "empty module: "+p)
	}
	_, _ = fmt.Fprintln(g.Out, box("API check", []row{
		{"Package", e.cfg.SDK.Package},
		{"Outline", filepath.Base(e.layout.OPML)},
		{"Scanned", fmt.Sprint(len(report.Scanned))},
		{"Missing", fmt.Sprint(len(report.MissingFromOPML))},
		{"Not in code", fmt.Sprint(len(report.NotInCode))},
		{"Empty modules", fmt.Sprint(len(report.EmptyModules))},
		{"Skipped", strings.Join(report.Skipped, ", ")},
	}, notes))

	if c.Strict && report.Failed() {
		return errors.ValidationError("public API outline is incomplete").
			WithContext("missing", len(report.MissingFromOPML)).
			WithContext("empty_modules", len(report.EmptyModules)).
			Build()
	}
	return nil
}
