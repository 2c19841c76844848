package content

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/pxtdocs/internal/forge"
	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
)

const (
	cardStyle   = "display: inline-block; margin: 10px; text-align: center; width: 150px;"
	linkStyle   = "text-decoration: none;"
	avatarStyle = "border-radius: 50%; width: 100px; height: 100px; border: 2px solid #e5e7eb;"
	loginStyle  = "margin-top: 8px; font-weight: 600; color: #1f2937;"
	countStyle  = "font-size: 0.875rem; color: #6b7280;"
)

// ContributorsOptions configures the contributors page.
type ContributorsOptions struct {
	Repo string
}

const contributorsIntro = `
Pixeltable is built by a vibrant community of developers, researchers, and enthusiasts. We're grateful for every contribution, from code to documentation to bug reports.

## Core Team & Community Contributors

The following amazing people have contributed to Pixeltable:

`

const contributorsOutro = `

---

## Join Our Community

Want to see your name here? We'd love your contributions! Check out our [GitHub repository](https://github.com/%s) to get started.

- 🐛 Report bugs
- 💡 Suggest features
- 📝 Improve documentation
- 🔧 Submit pull requests

Every contribution, no matter how small, makes a difference. Thank you for being part of the Pixeltable community! 🙏
`

// Humans returns the non-bot contributors ordered by contributions,
// highest first. Ties keep their input order.
func Humans(contributors []forge.Contributor) []forge.Contributor {
	out := slices.DeleteFunc(slices.Clone(contributors), func(c forge.Contributor) bool { return c.IsBot() })
	slices.SortStableFunc(out, func(a, b forge.Contributor) int { return b.Contributions - a.Contributions })
	return out
}

// RenderContributors renders the contributors page with one card per person.
func RenderContributors(contributors []forge.Contributor, opts ContributorsOptions) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(contributorsIntro)
	for _, c := range Humans(contributors) {
		b.WriteString("\n")
		if err := html.Render(&b, card(c)); err != nil {
			return nil, fmt.Errorf("render card for %s: %w", c.Login, err)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, contributorsOutro, opts.Repo)

	fields := frontmatter.NewFields(
		"title", "Our Contributors",
		"description", "Meet the amazing people who make Pixeltable possible",
	)
	return frontmatter.Render(fields, b.Bytes())
}

func card(c forge.Contributor) *html.Node {
	div := element(atom.Div, "style", cardStyle)
	a := element(atom.A, "href", c.HTMLURL, "target", "_blank", "style", linkStyle)
	div.AppendChild(a)

	a.AppendChild(element(atom.Img, "src", c.AvatarURL, "alt", c.Login, "style", avatarStyle))

	login := element(atom.Div, "style", loginStyle)
	login.AppendChild(&html.Node{Type: html.TextNode, Data: "@" + c.Login})
	a.AppendChild(login)

	count := element(atom.Div, "style", countStyle)
	count.AppendChild(&html.Node{Type: html.TextNode, Data: contributionLabel(c.Contributions)})
	a.AppendChild(count)
	return div
}

func element(tag atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func contributionLabel(n int) string {
	if n == 1 {
		return "1 contribution"
	}
	return strconv.Itoa(n) + " contributions"
}
