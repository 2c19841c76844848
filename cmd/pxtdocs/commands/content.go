package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/pxtdocs/internal/build"
	"git.home.luguber.info/inful/pxtdocs/internal/content"
)

// ChangelogCmd implements the 'changelog' command.
type ChangelogCmd struct {
	Output      string `short:"o" help:"Directory for changelog.mdx (default: <target>/changelog)"`
	MaxReleases int    `name:"max-releases" help:"Number of releases to include (default from config)"`
}

func (c *ChangelogCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	dir := outputDir(c.Output, e.layout.Target, build.ChangelogDir)
	maxReleases := e.cfg.Changelog.MaxReleases
	if c.MaxReleases > 0 {
		maxReleases = c.MaxReleases
	}
	n, err := content.WriteChangelog(g.Ctx, e.github, dir, maxReleases,
		content.ChangelogOptions{Repo: e.cfg.GitHub.Repo}, e.logger)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, box("Changelog", []row{
		{"Repository", e.cfg.GitHub.Repo},
		{"Releases", fmt.Sprint(n)},
		{"Output", filepath.Join(dir, content.ChangelogFile)},
	}, nil))
	return nil
}

// ContributorsCmd implements the 'contributors' command.
type ContributorsCmd struct {
	Output string `short:"o" help:"Directory for contributors.mdx (default: <target>/community)"`
}

func (c *ContributorsCmd) Run(g *Global, root *CLI) error {
	e, err := root.newEnv(g)
	if err != nil {
		return err
	}
	defer e.close()

	dir := outputDir(c.Output, e.layout.Target, build.ContributorsDir)
	n, err := content.WriteContributors(g.Ctx, e.github, dir,
		content.ContributorsOptions{Repo: e.cfg.GitHub.Repo}, e.logger)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, box("Contributors", []row{
		{"Repository", e.cfg.GitHub.Repo},
		{"People", fmt.Sprint(n)},
		{"Output", filepath.Join(dir, content.ContributorsFile)},
	}, nil))
	return nil
}

// outputDir returns flag, or rel below target when flag is empty.
func outputDir(flag, target, rel string) string {
	if flag != "" {
		if abs, err := filepath.Abs(flag); err == nil {
			return abs
		}
		return flag
	}
	return filepath.Join(target, filepath.FromSlash(rel))
}
