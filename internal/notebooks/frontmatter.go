package notebooks

import (
	stdErrors "errors"
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
)

var (
	ErrNoFrontmatter = stdErrors.New("page has no frontmatter")
	ErrNoTitle       = stdErrors.New("page frontmatter has no title")
)

// Links are the "open elsewhere" URLs of one notebook.
type Links struct {
	Kaggle string
	Colab  string
	GitHub string
}

// NotebookLinks builds the links for a notebook at repoPath, a slash path
// relative to the repository root, under linkBase (a GitHub blob URL).
func NotebookLinks(linkBase, repoPath string) Links {
	base := strings.TrimSuffix(linkBase, "/")
	github := base + "/" + repoPath
	return Links{
		Kaggle: "https://kaggle.com/kernels/welcome?src=" + github,
		Colab:  "https://colab.research.google.com/" + strings.TrimPrefix(base, "https://") + "/" + repoPath,
		GitHub: github,
	}
}

// Description is the frontmatter line shown under the page title.
func (l Links) Description() string {
	return "[Open in Kaggle](" + l.Kaggle + ") | [Open in Colab](" + l.Colab + ") | [View on GitHub](" + l.GitHub + ")"
}

// Enhance adds the notebook icon and link description to a page produced by
// quarto. Pages without frontmatter or without a title are rejected.
func Enhance(content []byte, links Links) ([]byte, error) {
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return nil, err
	}
	if doc.Fields == nil {
		return nil, ErrNoFrontmatter
	}
	title, ok := doc.Fields.Get("title")
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrNoTitle
	}
	doc.Fields.Set("title", strings.TrimSpace(title))
	doc.Fields.Set("icon", "notebook")
	doc.Fields.Set("description", links.Description())
	return doc.Bytes()
}
