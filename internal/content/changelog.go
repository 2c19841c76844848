package content

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/forge"
	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
	"git.home.luguber.info/inful/pxtdocs/internal/markdown"
)

const (
	dateLayout     = "January 02, 2006"
	releaseHeading = 4
)

// ChangelogOptions configures the changelog page.
type ChangelogOptions struct {
	// Repo is the "owner/name" repository the releases belong to.
	Repo string
}

const changelogIntro = `
## Contributors

Pixeltable is built by a vibrant community of contributors. We're grateful for everyone who has helped make Pixeltable better!

**Want to contribute?** Check out our [Contributing Guide](https://github.com/%[1]s/blob/main/CONTRIBUTING.md) to get started.

**Top Contributors:** View our amazing contributors on [GitHub](https://github.com/%[1]s/graphs/contributors).

---

## Release History

View the complete release history for Pixeltable below. Each release includes detailed information about new features, bug fixes, and improvements.

For the latest release information, visit our [GitHub Releases page](https://github.com/%[1]s/releases).

---

`

// RenderChangelog renders every release into one MDX page, newest first as given.
func RenderChangelog(releases []forge.Release, opts ChangelogOptions) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, changelogIntro, opts.Repo)

	pull := pullLinkPattern(opts.Repo)
	for _, r := range releases {
		body, err := markdown.DemoteHeadings([]byte(strings.TrimSpace(r.Body)), releaseHeading)
		if err != nil {
			return nil, fmt.Errorf("release %s: %w", r.TagName, err)
		}
		body = markdown.RewriteOutsideCode(body, func(seg []byte) []byte {
			return shortenPullLinks(pull, seg)
		})

		author := r.Author.Login
		if author == "" {
			author = "Unknown"
		}
		fmt.Fprintf(&b, "### %s\n\n", r.DisplayName())
		fmt.Fprintf(&b, "**Released:** %s  \n", releaseDate(r))
		fmt.Fprintf(&b, "**Author:** [@%s](https://github.com/%s)  \n", author, author)
		fmt.Fprintf(&b, "**View on GitHub:** [%s](%s)\n\n", r.TagName, r.HTMLURL)
		b.Write(body)
		b.WriteString("\n\n---\n\n")
	}

	fields := frontmatter.NewFields(
		"title", "Changelog",
		"description", "Release history and updates for Pixeltable",
	)
	return frontmatter.Render(fields, []byte(b.String()))
}

func releaseDate(r forge.Release) string {
	if r.PublishedAt == nil || r.PublishedAt.IsZero() {
		return "Unknown date"
	}
	return r.PublishedAt.UTC().Format(dateLayout)
}

func pullLinkPattern(repo string) *regexp.Regexp {
	return regexp.MustCompile(`https://github\.com/` + regexp.QuoteMeta(repo) + `/pull/(\d+)`)
}

// shortenPullLinks turns bare pull request URLs into "[#N](url)" links.
// URLs that already sit inside a link or an autolink are left alone.
func shortenPullLinks(re *regexp.Regexp, text []byte) []byte {
	matches := re.FindAllSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var out []byte
	last := 0
	for _, m := range matches {
		if m[0] > 0 && strings.IndexByte(`(<"[`, text[m[0]-1]) >= 0 {
			continue
		}
		out = append(out, text[last:m[0]]...)
		out = fmt.Appendf(out, "[#%s](%s)", text[m[2]:m[3]], text[m[0]:m[1]])
		last = m[1]
	}
	return append(out, text[last:]...)
}
