package pysource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotFound is returned when a module or symbol does not exist in the source tree.
var ErrNotFound = errors.New("not found")

const (
	// DefaultCacheSize bounds the number of parsed modules kept in memory.
	DefaultCacheSize = 256
	maxResolveDepth  = 16
)

// SymbolKind classifies a resolved symbol.
type SymbolKind string

const (
	SymbolModule   SymbolKind = "module"
	SymbolClass    SymbolKind = "class"
	SymbolFunction SymbolKind = "function"
	SymbolMethod   SymbolKind = "method"
)

// Symbol is a resolved dotted name. Module is the module that defines it,
// which differs from the requested path when the name is re-exported.
type Symbol struct {
	Kind     SymbolKind
	Name     string
	Module   *Module
	Class    *Class
	Function *Function
}

// Line is the source line of the definition; 0 for modules.
func (s *Symbol) Line() int {
	switch {
	case s.Function != nil:
		return s.Function.Line
	case s.Class != nil:
		return s.Class.Line
	}
	return 0
}

// Doc is the symbol's docstring.
func (s *Symbol) Doc() string {
	switch {
	case s.Function != nil:
		return s.Function.Doc
	case s.Class != nil:
		return s.Class.Doc
	}
	return s.Module.Doc
}

// Index resolves dotted names against a Python source tree rooted at Root,
// the directory that contains the top-level package. Parsed modules are
// kept in an LRU cache.
type Index struct {
	Root   string
	parser *Parser
	cache  *lru.Cache[string, *Module]
}

// NewIndex creates an index over root.
func NewIndex(root string, cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Module](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Index{Root: root, parser: NewParser(), cache: cache}, nil
}

// Module loads the module with the given dotted name.
func (ix *Index) Module(ctx context.Context, name string) (*Module, error) {
	if m, ok := ix.cache.Get(name); ok {
		return m, nil
	}
	if name == "" {
		return nil, fmt.Errorf("module %q: %w", name, ErrNotFound)
	}

	base := filepath.Join(ix.Root, filepath.FromSlash(strings.ReplaceAll(name, ".", "/")))
	candidates := []struct {
		path      string
		isPackage bool
	}{
		{base + ".py", false},
		{filepath.Join(base, "__init__.py"), true},
	}
	for _, c := range candidates {
		src, err := os.ReadFile(c.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read module %s: %w", name, err)
		}
		m, err := ix.parser.Parse(ctx, name, c.isPackage, src)
		if err != nil {
			return nil, err
		}
		m.Path = c.path
		if rel, err := filepath.Rel(ix.Root, c.path); err == nil {
			m.RelPath = filepath.ToSlash(rel)
		}
		ix.cache.Add(name, m)
		return m, nil
	}
	return nil, fmt.Errorf("module %q: %w", name, ErrNotFound)
}

// Resolve finds the definition behind a dotted name such as
// "pixeltable.functions.image.resize" or "pixeltable.Table.insert",
// following "from x import y" re-exports, wildcard imports and aliases.
func (ix *Index) Resolve(ctx context.Context, qualified string) (*Symbol, error) {
	s, err := ix.resolve(ctx, qualified, 0)
	if err != nil {
		return nil, err
	}
	s.Name = qualified
	return s, nil
}

func (ix *Index) resolve(ctx context.Context, q string, depth int) (*Symbol, error) {
	if depth > maxResolveDepth {
		return nil, fmt.Errorf("resolve %q: import cycle or chain too deep: %w", q, ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := ix.Module(ctx, q)
	if err == nil {
		return &Symbol{Kind: SymbolModule, Name: q, Module: m}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	idx := strings.LastIndexByte(q, '.')
	if idx < 0 {
		return nil, fmt.Errorf("resolve %q: %w", q, ErrNotFound)
	}
	parent, name := q[:idx], q[idx+1:]
	ps, err := ix.resolve(ctx, parent, depth+1)
	if err != nil {
		return nil, err
	}

	switch ps.Kind {
	case SymbolModule:
		return ix.lookup(ctx, ps.Module, name, depth)
	case SymbolClass:
		if f := ps.Class.Method(name); f != nil {
			return &Symbol{Kind: SymbolMethod, Name: q, Module: ps.Module, Class: ps.Class, Function: f}, nil
		}
	}
	return nil, fmt.Errorf("resolve %q: %w", q, ErrNotFound)
}

func (ix *Index) lookup(ctx context.Context, m *Module, name string, depth int) (*Symbol, error) {
	q := m.Name + "." + name
	if depth > maxResolveDepth {
		return nil, fmt.Errorf("resolve %q: import cycle or chain too deep: %w", q, ErrNotFound)
	}
	if f := m.Function(name); f != nil {
		return &Symbol{Kind: SymbolFunction, Name: q, Module: m, Function: f}, nil
	}
	if c := m.Class(name); c != nil {
		return &Symbol{Kind: SymbolClass, Name: q, Module: m, Class: c}, nil
	}
	if ref, ok := m.Imports[name]; ok {
		return ix.resolve(ctx, ref.Target(), depth+1)
	}
	if target, ok := m.Aliases[name]; ok && target != name {
		if strings.Contains(target, ".") {
			return ix.resolveRelativeTo(ctx, m, target, depth+1)
		}
		return ix.lookup(ctx, m, target, depth+1)
	}
	for _, w := range m.Wildcards {
		wm, err := ix.Module(ctx, w)
		if err != nil {
			continue
		}
		if s, err := ix.lookup(ctx, wm, name, depth+1); err == nil {
			return s, nil
		}
	}
	return nil, fmt.Errorf("resolve %q: %w", q, ErrNotFound)
}

// resolveRelativeTo resolves "a.b" written inside m, where "a" is a name
// bound in m (usually an imported module).
func (ix *Index) resolveRelativeTo(ctx context.Context, m *Module, dotted string, depth int) (*Symbol, error) {
	head, rest, _ := strings.Cut(dotted, ".")
	if ref, ok := m.Imports[head]; ok {
		return ix.resolve(ctx, ref.Target()+"."+rest, depth)
	}
	return ix.resolve(ctx, dotted, depth)
}
