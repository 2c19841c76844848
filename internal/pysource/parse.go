package pysource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser turns Python source into a Module. It is safe for concurrent use.
type Parser struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewParser creates a Python parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse extracts the definitions of one module. name is the dotted module
// name, used to resolve relative imports; isPackage marks __init__.py files.
func (p *Parser) Parse(ctx context.Context, name string, isPackage bool, src []byte) (*Module, error) {
	p.mu.Lock()
	tree, err := p.parser.ParseCtx(ctx, nil, src)
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	defer tree.Close()

	m := &Module{
		Name:      name,
		IsPackage: isPackage,
		Imports:   make(map[string]ImportRef),
		Aliases:   make(map[string]string),
	}
	e := &extractor{src: src, mod: m}
	root := tree.RootNode()
	m.Doc = e.docstring(root)
	e.statements(root)
	return m, nil
}

type extractor struct {
	src []byte
	mod *Module
}

func (e *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(e.src)
}

// statements walks module-level statements, descending into if/try blocks
// so conditional imports and definitions are still seen.
func (e *extractor) statements(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			e.mod.Functions = append(e.mod.Functions, e.function(child, nil))
		case "class_definition":
			e.mod.Classes = append(e.mod.Classes, e.class(child))
		case "decorated_definition":
			decorators := e.decorators(child)
			def := child.ChildByFieldName("definition")
			switch {
			case def == nil:
			case def.Type() == "function_definition":
				e.mod.Functions = append(e.mod.Functions, e.function(def, decorators))
			case def.Type() == "class_definition":
				e.mod.Classes = append(e.mod.Classes, e.class(def))
			}
		case "import_from_statement":
			e.fromImport(child)
		case "import_statement":
			e.importStatement(child)
		case "expression_statement":
			e.assignment(child)
		case "if_statement", "try_statement", "else_clause", "elif_clause",
			"except_clause", "finally_clause", "block":
			e.statements(child)
		}
	}
}

func (e *extractor) function(n *sitter.Node, decorators []string) *Function {
	f := &Function{
		Name:       e.text(n.ChildByFieldName("name")),
		Returns:    collapse(e.text(n.ChildByFieldName("return_type"))),
		Decorators: decorators,
		Line:       int(n.StartPoint().Row) + 1,
		Async:      strings.HasPrefix(e.text(n), "async"),
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		f.Params = e.params(params)
	}
	f.Doc = e.docstring(n.ChildByFieldName("body"))
	return f
}

func (e *extractor) class(n *sitter.Node) *Class {
	c := &Class{
		Name: e.text(n.ChildByFieldName("name")),
		Line: int(n.StartPoint().Row) + 1,
	}
	if sup := n.ChildByFieldName("superclasses"); sup != nil {
		c.Bases = strings.TrimSuffix(strings.TrimPrefix(collapse(e.text(sup)), "("), ")")
	}
	body := n.ChildByFieldName("body")
	c.Doc = e.docstring(body)
	if body == nil {
		return c
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			c.Methods = append(c.Methods, e.function(child, nil))
		case "decorated_definition":
			if def := child.ChildByFieldName("definition"); def != nil && def.Type() == "function_definition" {
				c.Methods = append(c.Methods, e.function(def, e.decorators(child)))
			}
		}
	}
	return c
}

// decorators returns decorator names without "@" or call arguments.
func (e *extractor) decorators(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(e.text(child), "@"))
		if idx := strings.IndexByte(name, '('); idx >= 0 {
			name = name[:idx]
		}
		out = append(out, strings.TrimSpace(name))
	}
	return out
}

func (e *extractor) params(n *sitter.Node) []Param {
	var out []Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
			out = append(out, Param{Name: e.text(child)})
		case "keyword_separator":
			out = append(out, Param{Name: "*"})
		case "positional_separator":
			out = append(out, Param{Name: "/"})
		case "typed_parameter":
			name := ""
			if first := child.NamedChild(0); first != nil {
				name = e.text(first)
			}
			out = append(out, Param{Name: name, Annotation: collapse(e.text(child.ChildByFieldName("type")))})
		case "default_parameter":
			out = append(out, Param{
				Name:    e.text(child.ChildByFieldName("name")),
				Default: collapse(e.text(child.ChildByFieldName("value"))),
			})
		case "typed_default_parameter":
			out = append(out, Param{
				Name:       e.text(child.ChildByFieldName("name")),
				Annotation: collapse(e.text(child.ChildByFieldName("type"))),
				Default:    collapse(e.text(child.ChildByFieldName("value"))),
			})
		}
	}
	return out
}

func (e *extractor) fromImport(n *sitter.Node) {
	modNode := n.ChildByFieldName("module_name")
	if modNode == nil {
		return
	}
	from := e.absolute(e.text(modNode))

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "wildcard_import" {
			e.mod.Wildcards = append(e.mod.Wildcards, from)
			continue
		}
		if n.FieldNameForChild(i) != "name" {
			continue
		}
		switch child.Type() {
		case "aliased_import":
			name := e.text(child.ChildByFieldName("name"))
			alias := e.text(child.ChildByFieldName("alias"))
			if name != "" && alias != "" {
				e.mod.Imports[alias] = ImportRef{Module: from, Name: name}
			}
		case "dotted_name", "identifier":
			name := e.text(child)
			e.mod.Imports[lastSegment(name)] = ImportRef{Module: from, Name: name}
		}
	}
}

func (e *extractor) importStatement(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "aliased_import" {
			continue
		}
		name := e.text(child.ChildByFieldName("name"))
		alias := e.text(child.ChildByFieldName("alias"))
		if name != "" && alias != "" {
			e.mod.Imports[alias] = ImportRef{Module: name}
		}
	}
}

// assignment records __all__ and simple "name = other.name" aliases.
func (e *extractor) assignment(n *sitter.Node) {
	assign := n.NamedChild(0)
	if assign == nil || assign.Type() != "assignment" {
		return
	}
	left := e.text(assign.ChildByFieldName("left"))
	right := assign.ChildByFieldName("right")
	if right == nil {
		return
	}
	if left == "__all__" && (right.Type() == "list" || right.Type() == "tuple") {
		e.mod.HasAll = true
		e.mod.All = nil
		for i := 0; i < int(right.NamedChildCount()); i++ {
			if item := right.NamedChild(i); item.Type() == "string" {
				e.mod.All = append(e.mod.All, unquote(e.text(item)))
			}
		}
		return
	}
	if right.Type() == "identifier" || right.Type() == "attribute" {
		e.mod.Aliases[left] = e.text(right)
	}
}

// absolute resolves a possibly relative module reference against the module being parsed.
func (e *extractor) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	dots := len(ref) - len(strings.TrimLeft(ref, "."))
	if dots == 0 {
		return ref
	}
	pkg := e.mod.Name
	if !e.mod.IsPackage {
		pkg = parentOf(pkg)
	}
	for i := 1; i < dots; i++ {
		pkg = parentOf(pkg)
	}
	rest := ref[dots:]
	switch {
	case pkg == "":
		return rest
	case rest == "":
		return pkg
	default:
		return pkg + "." + rest
	}
}

func (e *extractor) docstring(body *sitter.Node) string {
	if body == nil {
		return ""
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return ""
		}
		if s := stmt.NamedChild(0); s.Type() == "string" {
			return unquote(e.text(s))
		}
		return ""
	}
	return ""
}

// unquote strips string prefixes and quotes from a Python string literal.
func unquote(lit string) string {
	s := strings.TrimLeft(lit, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// collapse joins a multi-line source fragment into one line.
func collapse(s string) string {
	return bracketSpace.Replace(strings.Join(strings.Fields(s), " "))
}

var bracketSpace = strings.NewReplacer("[ ", "[", " ]", "]", "( ", "(", " )", ")", ",]", "]", ",)", ")")

func parentOf(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return ""
}

func lastSegment(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}
