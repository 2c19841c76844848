package config

import "path/filepath"

// Layout holds the project paths resolved against a root directory.
type Layout struct {
	Root      string
	Source    string
	OPML      string
	Target    string
	Notebooks string
}

// Layout resolves the configured paths against root. Absolute paths are kept.
func (c *Config) Layout(root string) Layout {
	at := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}
	return Layout{
		Root:      root,
		Source:    at(c.Paths.MintlifySource),
		OPML:      at(c.Paths.OPML),
		Target:    at(c.Paths.Target),
		Notebooks: at(c.Notebooks.Dir),
	}
}

// DocsJSON is the manifest inside the Mintlify source.
func (l Layout) DocsJSON() string { return filepath.Join(l.Source, "docs.json") }

// TargetDocsJSON is the manifest of the built site.
func (l Layout) TargetDocsJSON() string { return filepath.Join(l.Target, "docs.json") }
