package content

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pxtdocs/internal/forge"
	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
)

const (
	ChangelogFile    = "changelog.mdx"
	ContributorsFile = "contributors.mdx"
)

// ReleaseLister lists repository releases.
type ReleaseLister interface {
	ListReleases(ctx context.Context, repo string, max int) ([]forge.Release, error)
}

// ContributorLister lists repository contributors.
type ContributorLister interface {
	ListContributors(ctx context.Context, repo string) ([]forge.Contributor, error)
}

// WriteChangelog fetches releases and replaces dir with a fresh directory
// holding changelog.mdx. It returns the number of releases written; zero
// releases leave dir untouched.
func WriteChangelog(ctx context.Context, src ReleaseLister, dir string, maxReleases int, opts ChangelogOptions, logger *slog.Logger) (int, error) {
	releases, err := src.ListReleases(ctx, opts.Repo, maxReleases)
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryForge, "fetch releases").
			WithContext("repo", opts.Repo).Build()
	}
	if len(releases) == 0 {
		logger.Warn("No releases found; changelog not written", logfields.Repository(opts.Repo))
		return 0, nil
	}

	page, err := RenderChangelog(releases, opts)
	if err != nil {
		return 0, errors.BuildError("render changelog").WithCause(err).Build()
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.FileSystemError("clean changelog directory").WithCause(err).WithContext("path", dir).Build()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.FileSystemError("create changelog directory").WithCause(err).WithContext("path", dir).Build()
	}
	path := filepath.Join(dir, ChangelogFile)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return 0, errors.FileSystemError("write changelog").WithCause(err).WithContext("path", path).Build()
	}
	logger.Info("Changelog written", logfields.Path(path), logfields.Count(len(releases)))
	return len(releases), nil
}

// WriteContributors fetches contributors and replaces dir/contributors.mdx.
// It returns the number of people listed.
func WriteContributors(ctx context.Context, src ContributorLister, dir string, opts ContributorsOptions, logger *slog.Logger) (int, error) {
	contributors, err := src.ListContributors(ctx, opts.Repo)
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryForge, "fetch contributors").
			WithContext("repo", opts.Repo).Build()
	}
	people := len(Humans(contributors))
	if people == 0 {
		logger.Warn("No contributors found; page not written", logfields.Repository(opts.Repo))
		return 0, nil
	}

	page, err := RenderContributors(contributors, opts)
	if err != nil {
		return 0, errors.BuildError("render contributors").WithCause(err).Build()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.FileSystemError("create contributors directory").WithCause(err).WithContext("path", dir).Build()
	}
	path := filepath.Join(dir, ContributorsFile)
	if err := replaceFile(path, page); err != nil {
		return 0, errors.FileSystemError("write contributors page").WithCause(err).WithContext("path", path).Build()
	}
	logger.Info("Contributors page written", logfields.Path(path), logfields.Count(people))
	return people, nil
}

// replaceFile writes data next to path and renames it into place.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
