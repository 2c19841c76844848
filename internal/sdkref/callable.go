package sdkref

import (
	"git.home.luguber.info/inful/pxtdocs/internal/docstring"
	"git.home.luguber.info/inful/pxtdocs/internal/pysource"
)

// Kind is how a callable is labelled in its section header.
type Kind string

const (
	KindFunction Kind = "func"
	KindMethod   Kind = "method"
	KindUDF      Kind = "udf"
)

// SigParam is one parameter of a rendered signature.
type SigParam struct {
	Name       string
	Annotation string
	Default    string
}

// Callable is everything the section formatter needs about a function.
type Callable struct {
	Name       string
	Kind       Kind
	Signature  string
	ReturnType string
	Params     []SigParam
	Doc        *docstring.Docstring
}

// KindFor classifies an outline item type, promoting decorated functions to UDFs.
func KindFor(itemType string, fn *pysource.Function) Kind {
	switch {
	case itemType == "udf" || (fn != nil && fn.IsUDF()):
		return KindUDF
	case itemType == "method":
		return KindMethod
	}
	return KindFunction
}

// NewCallable builds a Callable from a parsed definition. Methods lose
// their leading self or cls parameter.
func NewCallable(name string, kind Kind, fn *pysource.Function) Callable {
	params := fn.Params
	if kind == KindMethod && len(params) > 0 && (params[0].Name == "self" || params[0].Name == "cls") {
		params = params[1:]
	}
	trimmed := &pysource.Function{Name: fn.Name, Params: params, Returns: fn.Returns}

	c := Callable{
		Name:       name,
		Kind:       kind,
		Signature:  trimmed.Signature(),
		ReturnType: stripQuotes(fn.Returns),
		Doc:        docstring.Parse(fn.Doc),
	}
	for _, p := range params {
		if p.Name == "*" || p.Name == "/" {
			continue
		}
		c.Params = append(c.Params, SigParam{
			Name:       trimStars(p.Name),
			Annotation: stripQuotes(p.Annotation),
			Default:    p.Default,
		})
	}
	return c
}

func trimStars(name string) string {
	for len(name) > 0 && name[0] == '*' {
		name = name[1:]
	}
	return name
}

// stripQuotes removes the quotes of a forward-reference annotation.
func stripQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
