package sdkref

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/markdown"
)

const sidebarTitleMax = 23

var (
	dataRole    = regexp.MustCompile(":data:`([^`]+)`")
	pyRole      = regexp.MustCompile(":(?:py:)?(?:func|class|meth|attr|mod):`([^`]+)`")
	urlAngle    = regexp.MustCompile(`<((?:https?://|ftp://|mailto:)[^>]+)>`)
	otherAngle  = regexp.MustCompile(`<([^>\n]+)>`)
	braceEscape = strings.NewReplacer("{", `\{`, "}", `\}`)
)

// EscapeMDX makes docstring prose safe for MDX. RST roles become inline
// code, braces are escaped outside code, angle-bracket URLs become links and
// any other angle-bracketed text becomes inline code.
func EscapeMDX(text string) string {
	if text == "" {
		return ""
	}
	text = dataRole.ReplaceAllString(text, "`$1`")
	text = pyRole.ReplaceAllString(text, "`$1`")

	out := markdown.RewriteOutsideCode([]byte(text), func(b []byte) []byte {
		s := braceEscape.Replace(string(b))
		s = urlAngle.ReplaceAllString(s, "[$1]($1)")
		s = otherAngle.ReplaceAllString(s, "`$1`")
		return []byte(s)
	})
	return string(out)
}

// formatNested lays out a multi-line description under a list bullet: the
// first line stays inline, later lines are indented two spaces and blank
// lines are dropped.
func formatNested(desc string) string {
	lines := strings.Split(desc, "\n")
	if len(lines) == 1 {
		return desc
	}
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case i == 0:
			out = append(out, trimmed)
		case trimmed != "":
			out = append(out, "  "+trimmed)
		}
	}
	return strings.Join(out, "\n")
}

// escapeYAML makes text safe inside a double-quoted frontmatter value.
func escapeYAML(text string) string {
	return strings.ReplaceAll(text, `"`, "'")
}

// truncateSidebarTitle cuts titles that would squash the sidebar.
func truncateSidebarTitle(title string) string {
	r := []rune(title)
	if len(r) <= sidebarTitleMax {
		return title
	}
	return string(r[:sidebarTitleMax])
}

// GitHubLink renders the "View Source on GitHub" badge.
func GitHubLink(url string) string {
	return `<a href="` + url + `" id="viewSource" target="_blank" rel="noopener noreferrer">` +
		`<img src="https://img.shields.io/badge/View%20Source%20on%20Github-blue?logo=github&labelColor=gray" ` +
		`alt="View Source on GitHub" style={{ display: 'inline', margin: '0px' }} noZoom /></a>`
}
