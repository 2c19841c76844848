package git

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

// DefaultRemote is the remote name used for clones and pushes.
const DefaultRemote = "origin"

// Signature identifies the author of deploy commits.
type Signature struct {
	Name  string
	Email string
}

// DefaultSignature is used when no author is configured.
var DefaultSignature = Signature{Name: "pxtdocs", Email: "pxtdocs@users.noreply.github.com"}

// CloneOptions selects what to clone and where.
type CloneOptions struct {
	URL string
	Dir string
	// Branch and Tag are mutually exclusive; both empty clones the remote HEAD.
	Branch string
	Tag    string
	Token  string
	Depth  int
}

// Repo is an opened working copy.
type Repo struct {
	repo   *git.Repository
	dir    string
	url    string
	auth   transport.AuthMethod
	author Signature
	logger *slog.Logger
}

// CommitInfo is a summary of a commit for logs.
type CommitInfo struct {
	Hash    string
	Subject string
	Author  string
	When    time.Time
}

// Short returns the abbreviated hash.
func (c CommitInfo) Short() string { return shortHash(c.Hash) }

// TokenAuth returns HTTP basic auth for a GitHub token, or nil when token is empty.
func TokenAuth(token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: token}
}

// Clone clones opts.URL into opts.Dir, replacing anything already there.
func Clone(ctx context.Context, opts CloneOptions, logger *slog.Logger) (*Repo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Branch != "" && opts.Tag != "" {
		return nil, errors.ValidationError("clone accepts a branch or a tag, not both").
			WithContext("branch", opts.Branch).
			WithContext("tag", opts.Tag).
			Build()
	}
	if err := os.RemoveAll(opts.Dir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to clear clone directory").
			WithContext("path", opts.Dir).
			Build()
	}

	auth := TokenAuth(opts.Token)
	cloneOptions := &git.CloneOptions{
		URL:        opts.URL,
		RemoteName: DefaultRemote,
		Auth:       auth,
		Depth:      opts.Depth,
	}
	ref := "HEAD"
	switch {
	case opts.Branch != "":
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOptions.SingleBranch = true
		ref = opts.Branch
	case opts.Tag != "":
		cloneOptions.ReferenceName = plumbing.NewTagReferenceName(opts.Tag)
		cloneOptions.SingleBranch = true
		ref = opts.Tag
	}

	logger.Debug("Cloning repository", logfields.URL(redactURL(opts.URL)), slog.String("ref", ref), logfields.Path(opts.Dir))
	start := time.Now()
	repository, err := git.PlainCloneContext(ctx, opts.Dir, false, cloneOptions)
	if err != nil {
		return nil, ClassifyGitError(err, "clone", opts.URL)
	}

	r := &Repo{repo: repository, dir: opts.Dir, url: opts.URL, auth: auth, author: DefaultSignature, logger: logger}
	attrs := []any{logfields.URL(redactURL(opts.URL)), slog.String("ref", ref), logfields.Path(opts.Dir),
		logfields.DurationMS(float64(time.Since(start).Milliseconds()))}
	if sha, headErr := r.HeadSHA(); headErr == nil {
		attrs = append(attrs, logfields.Commit(shortHash(sha)))
	}
	logger.Info("Repository cloned", attrs...)
	return r, nil
}

// Open opens the repository containing dir.
func Open(dir string, logger *slog.Logger) (*Repo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repository, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "not a git repository").
			WithContext("path", dir).
			Build()
	}
	return &Repo{repo: repository, dir: dir, author: DefaultSignature, logger: logger}, nil
}

// RemoteBranchExists reports whether url advertises refs/heads/branch.
// An empty remote has no branches.
func RemoteBranchExists(ctx context.Context, url, branch, token string) (bool, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: DefaultRemote,
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: TokenAuth(token)})
	if err != nil {
		if stdErrors.Is(err, transport.ErrEmptyRemoteRepository) {
			return false, nil
		}
		return false, ClassifyGitError(err, "ls-remote", url)
	}
	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

// WithAuthor sets the commit author.
func (r *Repo) WithAuthor(sig Signature) *Repo {
	if sig.Name != "" && sig.Email != "" {
		r.author = sig
	}
	return r
}

// WithToken sets the credentials used for Push.
func (r *Repo) WithToken(token string) *Repo {
	r.auth = TokenAuth(token)
	return r
}

// Dir returns the working tree path.
func (r *Repo) Dir() string { return r.dir }

// HeadSHA returns the full hash HEAD points at.
func (r *Repo) HeadSHA() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", ClassifyGitError(err, "rev-parse", r.url)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the checked out branch, or "" for a detached HEAD.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", ClassifyGitError(err, "rev-parse", r.url)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// CheckoutNewBranch creates name at HEAD and checks it out.
func (r *Repo) CheckoutNewBranch(name string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return ClassifyGitError(err, "checkout", r.url)
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}); err != nil {
		return ClassifyGitError(err, "checkout", r.url)
	}
	r.logger.Info("Created branch", logfields.Branch(name), logfields.Path(r.dir))
	return nil
}

// Tags lists tag names.
func (r *Repo) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, ClassifyGitError(err, "tag", r.url)
	}
	defer iter.Close()
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, ClassifyGitError(err, "tag", r.url)
	}
	return names, nil
}

// HighestVersionTag returns the greatest v-prefixed semantic version tag.
func (r *Repo) HighestVersionTag() (string, bool, error) {
	names, err := r.Tags()
	if err != nil {
		return "", false, err
	}
	tag, ok := versioning.Highest(names)
	return tag, ok, nil
}

// HasChanges reports whether the working tree differs from HEAD.
func (r *Repo) HasChanges() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, ClassifyGitError(err, "status", r.url)
	}
	status, err := wt.Status()
	if err != nil {
		return false, ClassifyGitError(err, "status", r.url)
	}
	return !status.IsClean(), nil
}

// StageAll stages additions, modifications and deletions like `git add -A`.
// It returns the number of paths staged.
func (r *Repo) StageAll() (int, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return 0, ClassifyGitError(err, "add", r.url)
	}
	status, err := wt.Status()
	if err != nil {
		return 0, ClassifyGitError(err, "status", r.url)
	}
	staged := 0
	for path, fs := range status {
		if fs.Worktree == git.Unmodified {
			continue
		}
		if fs.Worktree == git.Deleted {
			_, err = wt.Remove(path)
		} else {
			_, err = wt.Add(path)
		}
		if err != nil {
			return staged, ClassifyGitError(err, "add", r.url)
		}
		staged++
	}
	return staged, nil
}

// Commit records the index with message and returns the new hash.
func (r *Repo) Commit(message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", ClassifyGitError(err, "commit", r.url)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: r.author.Name, Email: r.author.Email, When: time.Now()},
	})
	if err != nil {
		return "", ClassifyGitError(err, "commit", r.url)
	}
	r.logger.Info("Committed", logfields.Commit(shortHash(hash.String())), slog.String("message", firstLine(message)))
	return hash.String(), nil
}

// Push pushes the local branch to the same name on origin.
func (r *Repo) Push(ctx context.Context, branch string) error {
	ref := plumbing.NewBranchReferenceName(branch)
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: DefaultRemote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:       r.auth,
	})
	if err != nil && !stdErrors.Is(err, git.NoErrAlreadyUpToDate) {
		return ClassifyGitError(err, "push", r.url)
	}
	r.logger.Info("Pushed", logfields.Branch(branch), logfields.URL(redactURL(r.url)))
	return nil
}

// Log returns up to n commits reachable from HEAD, newest first.
func (r *Repo) Log(n int) ([]CommitInfo, error) {
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, ClassifyGitError(err, "log", r.url)
	}
	defer iter.Close()
	var out []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if n > 0 && len(out) >= n {
			return storer.ErrStop
		}
		out = append(out, CommitInfo{
			Hash:    c.Hash.String(),
			Subject: firstLine(c.Message),
			Author:  c.Author.Name,
			When:    c.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, ClassifyGitError(err, "log", r.url)
	}
	return out, nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
