package sdkref

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
)

const (
	IconModule   = "cube"
	IconClass    = "box"
	IconFunction = "code"
	IconWarning  = "triangle-exclamation"
)

// Page is a rendered reference page.
type Page struct {
	// Name is the dotted path the page documents.
	Name   string
	Title  string
	Icon   string
	Source string
	// Header is raw MDX placed after the source badge.
	Header string
	// Intro is prose, escaped on render.
	Intro   string
	Body    []string
	Warning string
}

// Render produces the MDX file content.
func (p *Page) Render() ([]byte, error) {
	if p.Warning != "" {
		return WarningPage(p.Name, p.Warning)
	}
	fields := frontmatter.NewFields(
		"title", escapeYAML(p.Title),
		"sidebarTitle", escapeYAML(truncateSidebarTitle(lastSegment(p.Title))),
		"icon", p.Icon,
	)

	var b strings.Builder
	b.WriteString("\n")
	if p.Source != "" {
		b.WriteString(GitHubLink(p.Source))
		b.WriteString("\n\n")
	}
	if p.Header != "" {
		b.WriteString(p.Header)
		b.WriteString("\n")
	}
	if p.Intro != "" {
		b.WriteString(EscapeMDX(p.Intro))
		b.WriteString("\n")
	}
	for _, s := range p.Body {
		b.WriteString(s)
	}
	return frontmatter.Render(fields, []byte(b.String()))
}

// WarningPage renders the placeholder page for an item whose documentation
// could not be generated.
func WarningPage(name, message string) ([]byte, error) {
	fields := frontmatter.NewFields(
		"title", escapeYAML(name),
		"description", "Documentation unavailable",
		"icon", IconWarning,
	)
	body := fmt.Sprintf("\n## ⚠️ %s\n\n<Warning>\nDocumentation for `%s` is not available.\n</Warning>", message, name)
	return frontmatter.Render(fields, []byte(body))
}

// warningSection stands in for a callable that could not be resolved.
func warningSection(kind Kind, name, path string) string {
	return fmt.Sprintf("\n## `%s` %s()\n\n<Warning>\nDocumentation for `%s` is not available.\n</Warning>\n", kind, name, path)
}

// classHeader renders the class declaration block of a class page.
func classHeader(name, bases string) string {
	decl := "class " + name
	if bases != "" {
		decl += "(" + bases + ")"
	}
	return "```python\n" + decl + "\n```\n"
}

// sourceURL links to a definition on GitHub. Modules link to line 0.
func sourceURL(repo, ref, relPath string, line int) string {
	if repo == "" || relPath == "" {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/blob/%s/%s#L%d", repo, ref, relPath, line)
}
