package sdkref

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"

	ferrors "git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/pysource"
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

// DefaultBlacklist names runtime classes that leak into public modules and
// are never documented.
var DefaultBlacklist = []string{
	"Env", "TempStore", "MediaStore", "Catalog", "StorageBackend", "TransactionalDirectory",
	"Config", "Client", "Server", "StorageManager", "CacheManager", "FileCache", "S3Client",
	"TableVersionHandle", "SchemaObject", "Path", "Dir", "TableVersion", "ColumnVersion",
	"FunctionVersion",
}

// Options configures a Generator.
type Options struct {
	OPMLPath string
	// SourceRoot is the directory holding the Python package.
	SourceRoot string
	// OutputDir receives the .mdx pages; it is emptied first.
	OutputDir string
	// NavPrefix is prepended to page names in the navigation, e.g. "sdk/latest".
	NavPrefix  string
	TabName    string
	GitHubRepo string
	SourceRef  string
	// ShowErrors renders placeholders for items that cannot be resolved
	// instead of skipping them.
	ShowErrors bool
	Blacklist  []string
	CacheSize  int
}

// Result describes a generator run.
type Result struct {
	Tab *manifest.Tab
	// Pages are the navigation paths of every written page.
	Pages []string
	// Unresolved lists the dotted paths that could not be documented.
	Unresolved []string
}

// Generator renders the SDK reference from the API outline and the package source.
type Generator struct {
	opts   Options
	index  *pysource.Index
	logger *slog.Logger
	result *Result
}

// NewGenerator prepares a generator over opts.SourceRoot.
func NewGenerator(opts Options, logger *slog.Logger) (*Generator, error) {
	if opts.TabName == "" {
		opts.TabName = manifest.DefaultSDKTab
	}
	if opts.NavPrefix == "" {
		opts.NavPrefix = "sdk/latest"
	}
	if opts.SourceRef == "" {
		opts.SourceRef = "main"
	}
	if opts.Blacklist == nil {
		opts.Blacklist = DefaultBlacklist
	}
	if logger == nil {
		logger = slog.Default()
	}
	ix, err := pysource.NewIndex(opts.SourceRoot, opts.CacheSize)
	if err != nil {
		return nil, ferrors.InternalError("create source index").WithCause(err).Build()
	}
	return &Generator{opts: opts, index: ix, logger: logger}, nil
}

// Index exposes the source index the generator resolves against.
func (g *Generator) Index() *pysource.Index { return g.index }

// Generate writes every page and returns the SDK navigation tab, which holds
// a single "latest" dropdown.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	doc, err := LoadOPML(g.opts.OPMLPath)
	if err != nil {
		return nil, ferrors.ConfigError("cannot read public API outline").
			WithCause(err).WithContext("path", g.opts.OPMLPath).Build()
	}
	if err := os.RemoveAll(g.opts.OutputDir); err != nil {
		return nil, ferrors.FileSystemError("reset SDK output directory").WithCause(err).Build()
	}
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return nil, ferrors.FileSystemError("create SDK output directory").WithCause(err).Build()
	}

	g.result = &Result{}
	dd := &manifest.Dropdown{Key: versioning.LatestKey, Icon: "book"}
	for _, o := range doc.Outlines {
		if _, _, isItem := o.Item(); !isItem {
			grp, err := g.group(ctx, o)
			if err != nil {
				return nil, err
			}
			dd.Groups = append(dd.Groups, grp)
			continue
		}
		node, err := g.item(ctx, o)
		if err != nil {
			return nil, err
		}
		if node != nil {
			dd.Pages = append(dd.Pages, node)
		}
	}

	g.result.Tab = &manifest.Tab{Name: g.opts.TabName, Dropdowns: []*manifest.Dropdown{dd}}
	g.logger.Info("Generated SDK reference",
		logfields.Count(len(g.result.Pages)),
		slog.Int("unresolved", len(g.result.Unresolved)))
	return g.result, nil
}

func (g *Generator) group(ctx context.Context, o *Outline) (*manifest.Group, error) {
	grp := &manifest.Group{Name: o.Text, Pages: []manifest.Node{}}
	for _, child := range o.Outlines {
		var (
			node manifest.Node
			err  error
		)
		if _, _, isItem := child.Item(); isItem {
			node, err = g.item(ctx, child)
		} else {
			node, err = g.group(ctx, child)
		}
		if err != nil {
			return nil, err
		}
		if node != nil {
			grp.Pages = append(grp.Pages, node)
		}
	}
	return grp, nil
}

// item renders one outline item and returns its navigation node, or nil
// when the item is skipped.
func (g *Generator) item(ctx context.Context, o *Outline) (manifest.Node, error) {
	typ, p, _ := o.Item()
	if g.blacklisted(p) {
		g.logger.Debug("Skipping blacklisted item", logfields.Path(p))
		return nil, nil
	}
	switch typ {
	case "module":
		return g.modulePage(ctx, p, o.Outlines)
	case "class":
		return g.classPage(ctx, p, o.Outlines)
	case "func", "function", "udf":
		return g.functionPage(ctx, typ, p)
	default:
		g.logger.Warn("Unsupported outline item type", logfields.Path(p), slog.String("type", typ))
		return nil, nil
	}
}

func (g *Generator) modulePage(ctx context.Context, p string, children []*Outline) (manifest.Node, error) {
	sym, err := g.resolve(ctx, p, pysource.SymbolModule)
	if err != nil {
		return g.unresolvedPage(p, "Module not found", err)
	}

	page := &Page{
		Name:   p,
		Title:  p,
		Icon:   IconModule,
		Source: sourceURL(g.opts.GitHubRepo, g.opts.SourceRef, sym.Module.RelPath, 0),
		Intro:  sym.Module.Doc,
	}
	var nested []manifest.Node
	for _, child := range children {
		ct, cp, ok := child.Item()
		if !ok || g.blacklisted(cp) {
			continue
		}
		switch ct {
		case "class":
			node, err := g.classPage(ctx, cp, child.Outlines)
			if err != nil {
				return nil, err
			}
			if node != nil {
				nested = append(nested, node)
			}
		case "func", "function", "udf":
			if section, ok := g.callableSection(ctx, ct, cp); ok {
				page.Body = append(page.Body, section)
			}
		default:
			g.logger.Warn("Unsupported module member type", logfields.Path(cp), slog.String("type", ct))
		}
	}

	ref, err := g.write(page)
	if err != nil {
		return nil, err
	}
	if len(nested) == 0 {
		return ref, nil
	}
	return &manifest.Group{Name: p, Pages: append([]manifest.Node{ref}, nested...)}, nil
}

func (g *Generator) classPage(ctx context.Context, p string, children []*Outline) (manifest.Node, error) {
	sym, err := g.resolve(ctx, p, pysource.SymbolClass)
	if err != nil {
		return g.unresolvedPage(p, "Class not found", err)
	}

	page := &Page{
		Name:   p,
		Title:  p,
		Icon:   IconClass,
		Source: sourceURL(g.opts.GitHubRepo, g.opts.SourceRef, sym.Module.RelPath, sym.Line()),
		Header: classHeader(sym.Class.Name, sym.Class.Bases),
		Intro:  sym.Class.Doc,
	}

	var methods []string
	for _, child := range children {
		if _, cp, ok := child.Item(); ok {
			methods = append(methods, cp)
		}
	}
	if len(children) == 0 {
		for _, m := range sym.Class.Methods {
			if m.Name[0] != '_' && !m.HasDecorator("property") {
				methods = append(methods, p+"."+m.Name)
			}
		}
	}
	for _, mp := range methods {
		if section, ok := g.callableSection(ctx, "method", mp); ok {
			page.Body = append(page.Body, section)
		}
	}
	return g.write(page)
}

func (g *Generator) functionPage(ctx context.Context, typ, p string) (manifest.Node, error) {
	sym, err := g.resolve(ctx, p, pysource.SymbolFunction)
	if err != nil {
		return g.unresolvedPage(p, "Function not found", err)
	}
	page := &Page{
		Name:   p,
		Title:  p,
		Icon:   IconFunction,
		Source: sourceURL(g.opts.GitHubRepo, g.opts.SourceRef, sym.Module.RelPath, sym.Line()),
		Body:   []string{RenderSection(NewCallable(lastSegment(p), KindFor(typ, sym.Function), sym.Function))},
	}
	return g.write(page)
}

// callableSection renders a function or method section. ok is false when
// the item is skipped.
func (g *Generator) callableSection(ctx context.Context, typ, p string) (string, bool) {
	name := lastSegment(p)
	sym, err := g.index.Resolve(ctx, p)
	if err == nil && sym.Function == nil {
		err = errors.New("not a function")
	}
	if err != nil {
		g.unresolved(p, err)
		if !g.opts.ShowErrors {
			return "", false
		}
		return warningSection(KindFor(typ, nil), name, p), true
	}
	return RenderSection(NewCallable(name, KindFor(typ, sym.Function), sym.Function)), true
}

func (g *Generator) resolve(ctx context.Context, p string, want pysource.SymbolKind) (*pysource.Symbol, error) {
	sym, err := g.index.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if sym.Kind != want && !(want == pysource.SymbolFunction && sym.Kind == pysource.SymbolMethod) {
		return nil, errors.New("resolved to a " + string(sym.Kind))
	}
	return sym, nil
}

func (g *Generator) unresolved(p string, err error) {
	g.result.Unresolved = append(g.result.Unresolved, p)
	g.logger.Warn("Could not document item", logfields.Path(p), logfields.Error(err))
}

func (g *Generator) unresolvedPage(p, message string, err error) (manifest.Node, error) {
	g.unresolved(p, err)
	if !g.opts.ShowErrors {
		return nil, nil
	}
	return g.write(&Page{Name: p, Title: p, Warning: message})
}

func (g *Generator) write(page *Page) (manifest.Node, error) {
	content, err := page.Render()
	if err != nil {
		return nil, ferrors.BuildError("render SDK page").WithCause(err).WithContext("page", page.Name).Build()
	}
	stem := Sanitize(page.Name)
	file := filepath.Join(g.opts.OutputDir, stem+".mdx")
	if err := os.WriteFile(file, content, 0o644); err != nil {
		return nil, ferrors.FileSystemError("write SDK page").WithCause(err).WithContext("path", file).Build()
	}
	ref := path.Join(g.opts.NavPrefix, stem)
	g.result.Pages = append(g.result.Pages, ref)
	return manifest.PageRef(ref), nil
}

func (g *Generator) blacklisted(p string) bool {
	return slices.Contains(g.opts.Blacklist, lastSegment(p))
}
