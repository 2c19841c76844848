package notebooks

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
	"git.home.luguber.info/inful/pxtdocs/internal/workspace"
)

const (
	DefaultTimeout  = 5 * time.Minute
	DefaultLinkBase = "https://github.com/pixeltable/pixeltable/blob/release"
	checkpointDir   = ".ipynb_checkpoints"
)

// Options configures a Converter.
type Options struct {
	// Dir holds the .ipynb sources.
	Dir string
	// OutputDir is emptied and receives the .mdx pages.
	OutputDir string
	// RepoRoot anchors the notebook paths used in links.
	RepoRoot string
	LinkBase string
	Quarto   string
	Timeout  time.Duration
}

// Result summarizes a conversion.
type Result struct {
	Notebooks int
	Pages     int
	Enhanced  int
	// Skipped lists pages whose frontmatter was left untouched.
	Skipped []string
}

// Converter runs quarto over a notebooks directory.
type Converter struct {
	runner toolexec.Runner
	opts   Options
	logger *slog.Logger
}

// NewConverter creates a converter; zero options take their defaults.
func NewConverter(runner toolexec.Runner, opts Options, logger *slog.Logger) *Converter {
	if opts.Quarto == "" {
		opts.Quarto = "quarto"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LinkBase == "" {
		opts.LinkBase = DefaultLinkBase
	}
	if opts.RepoRoot == "" {
		opts.RepoRoot = filepath.Dir(filepath.Dir(opts.Dir))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{runner: runner, opts: opts, logger: logger}
}

// Discover lists the notebooks under dir as sorted slash paths relative to
// dir, ignoring Jupyter checkpoint copies.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.ConfigError("notebooks directory not found").
			WithContext("path", dir).
			Build()
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.ipynb", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan notebooks").
			WithContext("path", dir).
			Build()
	}
	out := matches[:0]
	for _, m := range matches {
		if slices.Contains(strings.Split(m, "/"), checkpointDir) {
			continue
		}
		out = append(out, m)
	}
	slices.Sort(out)
	return out, nil
}

// Convert renders every notebook and enhances the produced pages.
func (c *Converter) Convert(ctx context.Context) (*Result, error) {
	notebooks, err := Discover(c.opts.Dir)
	if err != nil {
		return nil, err
	}
	if len(notebooks) == 0 {
		return nil, errors.ConfigError("no notebooks found").WithContext("path", c.opts.Dir).Build()
	}
	c.logger.Info("Converting notebooks", logfields.Path(c.opts.Dir), logfields.Count(len(notebooks)))

	out, err := filepath.Abs(c.opts.OutputDir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "invalid output directory").Build()
	}
	if err := workspace.Reset(out); err != nil {
		return nil, err
	}
	if err := c.render(ctx, out); err != nil {
		return nil, err
	}

	res := &Result{Notebooks: len(notebooks)}
	byStem := stemIndex(notebooks)
	err = filepath.WalkDir(out, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(p) != ".mdx" {
			return walkErr
		}
		res.Pages++
		rel, _ := filepath.Rel(out, p)
		stem := strings.TrimSuffix(d.Name(), ".mdx")
		nb, ok := byStem[stem]
		if !ok {
			c.logger.Warn("No source notebook for page", logfields.Page(rel))
			res.Skipped = append(res.Skipped, rel)
			return nil
		}
		if err := c.enhanceFile(p, nb); err != nil {
			c.logger.Warn("Left page frontmatter unchanged", logfields.Page(rel), logfields.Error(err))
			res.Skipped = append(res.Skipped, rel)
			return nil
		}
		res.Enhanced++
		return nil
	})
	if err != nil {
		return res, errors.WrapError(err, errors.CategoryFileSystem, "failed to post-process notebook pages").Build()
	}
	c.logger.Info("Converted notebooks", logfields.Count(res.Pages), slog.Int("enhanced", res.Enhanced))
	return res, nil
}

func (c *Converter) render(ctx context.Context, outputDir string) error {
	cfg, err := QuartoConfig(outputDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to render quarto config").Build()
	}
	cfgPath := filepath.Join(c.opts.Dir, QuartoConfigFile)
	if err := os.WriteFile(cfgPath, cfg, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write quarto config").
			WithContext("path", cfgPath).
			Build()
	}
	defer func() {
		if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("Failed to remove quarto config", logfields.Path(cfgPath), logfields.Error(err))
		}
	}()

	res, err := c.runner.Run(ctx, toolexec.Command{
		Name:    c.opts.Quarto,
		Args:    []string{"render", "--to", "docusaurus-md"},
		Dir:     c.opts.Dir,
		Timeout: c.opts.Timeout,
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryTool, "quarto render failed").
			WithContext("tool", c.opts.Quarto).
			Build()
	}
	c.logger.Debug("Quarto finished", logfields.DurationMS(float64(res.Duration.Milliseconds())))
	return nil
}

func (c *Converter) enhanceFile(pagePath, notebook string) error {
	content, err := os.ReadFile(pagePath) // #nosec G304 -- produced by quarto under the output dir
	if err != nil {
		return err
	}
	abs := filepath.Join(c.opts.Dir, filepath.FromSlash(notebook))
	rel, err := filepath.Rel(c.opts.RepoRoot, abs)
	if err != nil {
		return err
	}
	enhanced, err := Enhance(content, NotebookLinks(c.opts.LinkBase, filepath.ToSlash(rel)))
	if err != nil {
		return err
	}
	return os.WriteFile(pagePath, enhanced, 0o644) // #nosec G306 -- published site content
}

// stemIndex maps a file stem to its first notebook in sorted order.
func stemIndex(notebooks []string) map[string]string {
	idx := make(map[string]string, len(notebooks))
	for _, nb := range notebooks {
		stem := strings.TrimSuffix(path.Base(nb), ".ipynb")
		if _, seen := idx[stem]; !seen {
			idx[stem] = nb
		}
	}
	return idx
}
