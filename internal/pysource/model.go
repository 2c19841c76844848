// Package pysource extracts the documented surface of a Python package
// statically, without importing it.
package pysource

import (
	"strings"
)

// Param is one function parameter as written in source. Variadic
// parameters keep their "*" or "**" prefix, and the bare "*" and "/"
// markers appear as parameters with only a Name.
type Param struct {
	Name       string
	Annotation string
	Default    string
}

// String renders the parameter the way Python prints signatures.
func (p Param) String() string {
	s := p.Name
	if p.Annotation != "" {
		s += ": " + p.Annotation
		if p.Default != "" {
			s += " = " + p.Default
		}
		return s
	}
	if p.Default != "" {
		s += "=" + p.Default
	}
	return s
}

// Function is a function or method definition.
type Function struct {
	Name       string
	Params     []Param
	Returns    string
	Decorators []string
	Doc        string
	Line       int
	Async      bool
}

// Signature renders "(params) -> returns".
func (f *Function) Signature() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	sig := "(" + strings.Join(parts, ", ") + ")"
	if f.Returns != "" {
		sig += " -> " + f.Returns
	}
	return sig
}

// IsUDF reports whether the function carries a @udf or @pxt.udf decorator.
func (f *Function) IsUDF() bool {
	for _, d := range f.Decorators {
		if d == "udf" || d == "pxt.udf" || d == "pixeltable.udf" {
			return true
		}
	}
	return false
}

// HasDecorator reports whether name is among the decorators.
func (f *Function) HasDecorator(name string) bool {
	for _, d := range f.Decorators {
		if d == name {
			return true
		}
	}
	return false
}

// Class is a class definition and its methods.
type Class struct {
	Name    string
	Bases   string
	Doc     string
	Line    int
	Methods []*Function
}

// Method returns the method called name, or nil.
func (c *Class) Method(name string) *Function {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ImportRef is where an imported name comes from. Name is empty for
// "import a.b as c" style imports of whole modules.
type ImportRef struct {
	Module string
	Name   string
}

// Target is the dotted path the reference points at.
func (r ImportRef) Target() string {
	if r.Name == "" {
		return r.Module
	}
	return r.Module + "." + r.Name
}

// Module is one parsed Python module.
type Module struct {
	Name      string
	Path      string
	RelPath   string
	IsPackage bool
	Doc       string
	Functions []*Function
	Classes   []*Class
	Imports   map[string]ImportRef
	// Aliases holds module-level "name = other" assignments.
	Aliases   map[string]string
	Wildcards []string
	// All is the __all__ list; HasAll distinguishes an empty list from none.
	All    []string
	HasAll bool
}

// Function returns the top-level function called name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Class returns the top-level class called name, or nil.
func (m *Module) Class(name string) *Class {
	for _, c := range m.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PublicNames lists the module's public API: __all__ when present,
// otherwise the non-underscore functions and classes it defines.
func (m *Module) PublicNames() []string {
	if m.HasAll {
		return m.All
	}
	var names []string
	for _, f := range m.Functions {
		if !strings.HasPrefix(f.Name, "_") {
			names = append(names, f.Name)
		}
	}
	for _, c := range m.Classes {
		if !strings.HasPrefix(c.Name, "_") {
			names = append(names, c.Name)
		}
	}
	return names
}
