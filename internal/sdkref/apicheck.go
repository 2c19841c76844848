package sdkref

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/pysource"
)

// DefaultModules are the submodules scanned besides the root package.
var DefaultModules = []string{
	"functions.audio", "functions.date", "functions.image", "functions.json",
	"functions.math", "functions.string", "functions.timestamp", "functions.video",
	"functions.yolox", "functions.whisperx", "functions.openai", "functions.anthropic",
	"functions.gemini", "functions.bedrock", "functions.groq", "functions.replicate",
	"functions.together", "functions.fireworks", "functions.mistralai", "functions.deepseek",
	"functions.ollama", "functions.llama_cpp", "functions.whisper", "functions.vision",
	"functions.huggingface", "iterators", "io",
}

// APIItem is a named member of a module or class.
type APIItem struct {
	Type string
	Name string
}

// APIReport is the difference between the code's public API and the outline.
type APIReport struct {
	// Scanned maps module and class paths to their public members.
	Scanned         map[string][]APIItem
	MissingFromOPML []string
	NotInCode       []string
	EmptyModules    []string
	// Skipped lists submodules that could not be loaded.
	Skipped []string
}

// Failed reports whether the outline is missing items or has empty modules.
// Outline entries with no code counterpart are reported but tolerated.
func (r *APIReport) Failed() bool {
	return len(r.MissingFromOPML) > 0 || len(r.EmptyModules) > 0
}

// ScanAPI collects the public API of pkg and the given submodules
// (relative to pkg). Submodules count only what they define themselves,
// plus UDFs.
func ScanAPI(ctx context.Context, ix *pysource.Index, pkg string, submodules []string) (map[string][]APIItem, []string, error) {
	s := &scanner{ix: ix, items: map[string][]APIItem{}}
	if err := s.module(ctx, pkg, true); err != nil {
		return nil, nil, err
	}
	var skipped []string
	for _, sub := range submodules {
		full := pkg + "." + sub
		err := s.module(ctx, full, false)
		if errors.Is(err, pysource.ErrNotFound) {
			skipped = append(skipped, full)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return s.items, skipped, nil
}

type scanner struct {
	ix    *pysource.Index
	items map[string][]APIItem
}

func (s *scanner) module(ctx context.Context, path string, root bool) error {
	m, err := s.ix.Module(ctx, path)
	if err != nil {
		return err
	}
	var items []APIItem
	for _, name := range m.PublicNames() {
		sym, err := s.ix.Resolve(ctx, path+"."+name)
		if err != nil {
			continue
		}
		udf := sym.Function != nil && sym.Function.IsUDF()
		if !root && !udf && !strings.HasPrefix(sym.Module.Name, path) {
			continue
		}
		switch sym.Kind {
		case pysource.SymbolClass:
			items = append(items, APIItem{Type: "class", Name: name})
			s.class(path+"."+name, sym.Class)
		case pysource.SymbolFunction:
			typ := "func"
			if udf {
				typ = "udf"
			}
			items = append(items, APIItem{Type: typ, Name: name})
		}
	}
	if len(items) > 0 {
		s.items[path] = items
	}
	return nil
}

func (s *scanner) class(path string, c *pysource.Class) {
	var items []APIItem
	for _, m := range c.Methods {
		if strings.HasPrefix(m.Name, "_") || slices.ContainsFunc(items, func(it APIItem) bool { return it.Name == m.Name }) {
			continue
		}
		typ := "method"
		if m.HasDecorator("property") || m.HasDecorator("cached_property") || m.HasDecorator("functools.cached_property") {
			typ = "property"
		}
		items = append(items, APIItem{Type: typ, Name: m.Name})
	}
	if len(items) > 0 {
		s.items[path] = items
	}
}

// CompareAPI reports the differences between scanned code items and the
// items documented in the outline.
func CompareAPI(scanned, documented map[string][]APIItem) *APIReport {
	r := &APIReport{Scanned: scanned}
	for _, path := range slices.Sorted(maps.Keys(scanned)) {
		doc, ok := documented[path]
		for _, it := range scanned[path] {
			if !ok || !containsName(doc, it.Name) {
				r.MissingFromOPML = append(r.MissingFromOPML, fmt.Sprintf("%s.%s (%s)", path, it.Name, it.Type))
			}
		}
	}
	for _, path := range slices.Sorted(maps.Keys(documented)) {
		doc := documented[path]
		code, ok := scanned[path]
		switch {
		case len(doc) == 0:
			if len(code) > 0 {
				r.EmptyModules = append(r.EmptyModules, fmt.Sprintf("%s (has %d items in code)", path, len(code)))
			}
		case ok:
			for _, it := range doc {
				if !containsName(code, it.Name) {
					r.NotInCode = append(r.NotInCode, fmt.Sprintf("%s.%s (%s)", path, it.Name, it.Type))
				}
			}
		default:
			for _, it := range doc {
				r.NotInCode = append(r.NotInCode, fmt.Sprintf("%s.%s (%s) - module not found", path, it.Name, it.Type))
			}
		}
	}
	slices.Sort(r.MissingFromOPML)
	slices.Sort(r.NotInCode)
	slices.Sort(r.EmptyModules)
	return r
}

// CheckAPI scans the code and compares it with the outline.
func CheckAPI(ctx context.Context, ix *pysource.Index, doc *OPML, pkg string, submodules []string) (*APIReport, error) {
	scanned, skipped, err := ScanAPI(ctx, ix, pkg, submodules)
	if err != nil {
		return nil, err
	}
	r := CompareAPI(scanned, doc.Documented())
	r.Skipped = skipped
	return r, nil
}

func containsName(items []APIItem, name string) bool {
	return slices.ContainsFunc(items, func(it APIItem) bool { return it.Name == name })
}
