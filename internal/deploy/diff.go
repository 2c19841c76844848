package deploy

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
)

// PageDiff lists site pages by how a deploy changed them.
type PageDiff struct {
	Added   []string
	Changed []string
	Removed []string
}

// Empty reports whether no page changed.
func (d PageDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Fingerprints maps slash-separated page paths to content fingerprints.
type Fingerprints map[string]string

// FingerprintPages fingerprints every .mdx page below dir. A missing dir
// yields an empty set.
func FingerprintPages(dir string) (Fingerprints, error) {
	out := Fingerprints{}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return out, nil
	}
	pages, err := doublestar.Glob(os.DirFS(dir), "**/*.mdx", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to list pages").
			WithContext("path", dir).
			Build()
	}
	for _, rel := range pages {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel))) // #nosec G304 -- pages of the deploy tree
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read page").
				WithContext("path", rel).
				Build()
		}
		fp, err := frontmatter.Fingerprint(data)
		if err != nil {
			// Pages with broken frontmatter are compared by raw content.
			fp = mdfp.CalculateFingerprintFromParts("", string(data))
		}
		out[rel] = fp
	}
	return out, nil
}

// ComparePages diffs two fingerprint sets.
func ComparePages(before, after Fingerprints) PageDiff {
	var d PageDiff
	for p, fp := range after {
		old, ok := before[p]
		switch {
		case !ok:
			d.Added = append(d.Added, p)
		case old != fp:
			d.Changed = append(d.Changed, p)
		}
	}
	for p := range before {
		if _, ok := after[p]; !ok {
			d.Removed = append(d.Removed, p)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Changed)
	slices.Sort(d.Removed)
	return d
}

func logDiff(logger *slog.Logger, d PageDiff) {
	logger.Info("Page changes",
		slog.Int("added", len(d.Added)),
		slog.Int("changed", len(d.Changed)),
		slog.Int("removed", len(d.Removed)))
	for _, p := range d.Removed {
		logger.Debug("Page removed", logfields.Page(p))
	}
}
