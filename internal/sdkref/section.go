package sdkref

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/docstring"
)

// RenderSection renders one callable as an MDX section: header, signature,
// description, then parameters, returns and examples when documented.
func RenderSection(c Callable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## `%s` %s()\n\n", c.Kind, c.Name)
	b.WriteString("```python\n")
	b.WriteString(FormatSignature(c.Name, c.Signature))
	b.WriteString("\n```\n\n")

	d := c.Doc
	if d == nil {
		return b.String()
	}
	if d.Description != "" {
		b.WriteString(EscapeMDX(d.Description))
		b.WriteString("\n\n")
	}
	b.WriteString(renderParams(c))
	b.WriteString(renderReturns(c))
	b.WriteString(renderExamples(docstring.ExtractExamples(d.Examples)))
	return b.String()
}

// renderParams lists documented parameters in declaration order, followed
// by documented names the signature does not have.
func renderParams(c Callable) string {
	if len(c.Doc.Params) == 0 {
		return ""
	}
	documented := make(map[string]docstring.Param, len(c.Doc.Params))
	for _, p := range c.Doc.Params {
		documented[p.Name] = p
	}

	var b strings.Builder
	b.WriteString("**Parameters:**\n\n")
	seen := make(map[string]bool)
	for _, sp := range c.Params {
		dp, ok := documented[sp.Name]
		if !ok {
			continue
		}
		seen[sp.Name] = true
		b.WriteString(paramBullet(dp, sp))
	}
	for _, dp := range c.Doc.Params {
		if !seen[dp.Name] {
			b.WriteString(paramBullet(dp, SigParam{}))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func paramBullet(dp docstring.Param, sp SigParam) string {
	typ := firstNonEmpty(sp.Annotation, dp.Type, "Any")
	def := firstNonEmpty(sp.Default, dp.Default)

	line := fmt.Sprintf("- **`%s`** (`%s`", dp.Name, typ)
	if def != "" && def != "None" {
		line += fmt.Sprintf(", default: `%s`", def)
	}
	line += ")"
	if dp.Description != "" {
		line += ": " + formatNested(EscapeMDX(dp.Description))
	}
	return line + "\n"
}

func renderReturns(c Callable) string {
	r := c.Doc.Returns
	if r == nil {
		return ""
	}
	typ := firstNonEmpty(c.ReturnType, r.Type, "Any")
	desc := firstNonEmpty(r.Description, "Return value")
	return fmt.Sprintf("**Returns:**\n\n- *%s*: %s\n\n", typ, EscapeMDX(desc))
}

func renderExamples(examples []docstring.Example) string {
	if len(examples) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("**Examples:**\n\n")
	for _, ex := range examples {
		if ex.Description != "" {
			b.WriteString(EscapeMDX(ex.Description))
			b.WriteString("\n")
		}
		if ex.Code != "" {
			b.WriteString("```python\n")
			b.WriteString(ex.Code)
			b.WriteString("\n```\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
