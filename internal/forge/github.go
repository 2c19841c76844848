package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/logfields"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"
	maxPerPage    = 100
	userAgent     = "pxtdocs/1.0"
)

// GitHubClient reads releases and contributors from the GitHub REST API.
type GitHubClient struct {
	httpClient *http.Client
	apiURL     string
	logger     *slog.Logger
}

// Option configures a GitHubClient.
type Option func(*GitHubClient)

// WithAPIURL points the client at another API root, such as a test server.
func WithAPIURL(u string) Option {
	return func(c *GitHubClient) { c.apiURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *GitHubClient) { c.logger = l }
}

// NewGitHubClient creates a client. Requests are authenticated when token
// is non-empty; anonymous access works for public repositories within the
// unauthenticated rate limit.
func NewGitHubClient(ctx context.Context, token string, opts ...Option) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = 30 * time.Second

	c := &GitHubClient{httpClient: httpClient, apiURL: DefaultAPIURL, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases returns up to max releases of repo, newest first. Drafts are skipped.
func (c *GitHubClient) ListReleases(ctx context.Context, repo string, max int) ([]Release, error) {
	if err := ValidateRepo(repo); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = 50
	}
	perPage := min(max, maxPerPage)

	var out []Release
	next := fmt.Sprintf("%s/repos/%s/releases?per_page=%d", c.apiURL, repo, perPage)
	for next != "" && len(out) < max {
		var page []Release
		var err error
		next, err = c.getPage(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		for _, r := range page {
			if !r.Draft {
				out = append(out, r)
			}
		}
	}
	if len(out) > max {
		out = out[:max]
	}
	c.logger.Debug("Fetched releases", logfields.Repository(repo), logfields.Count(len(out)))
	return out, nil
}

// ListContributors returns every contributor of repo, following pagination.
func (c *GitHubClient) ListContributors(ctx context.Context, repo string) ([]Contributor, error) {
	if err := ValidateRepo(repo); err != nil {
		return nil, err
	}
	var out []Contributor
	next := fmt.Sprintf("%s/repos/%s/contributors?per_page=%d", c.apiURL, repo, maxPerPage)
	for next != "" {
		var page []Contributor
		var err error
		next, err = c.getPage(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	c.logger.Debug("Fetched contributors", logfields.Repository(repo), logfields.Count(len(out)))
	return out, nil
}

// getPage decodes one page into result and returns the next page URL, if any.
func (c *GitHubClient) getPage(ctx context.Context, endpoint string, result any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errors.InternalError("build GitHub request").WithCause(err).Build()
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NetworkError("GitHub request failed").
			WithCause(err).WithContext("endpoint", endpoint).Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", statusError(resp, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return "", errors.ForgeError("decode GitHub response").
			WithCause(err).WithContext("endpoint", endpoint).Build()
	}
	return nextLink(resp.Header.Get("Link"), endpoint), nil
}

// nextLink extracts the rel="next" target of a Link header, resolved
// against the request URL.
func nextLink(header, base string) string {
	for part := range strings.SplitSeq(header, ",") {
		target, params, ok := strings.Cut(part, ";")
		if !ok || !strings.Contains(params, `rel="next"`) {
			continue
		}
		target = strings.Trim(strings.TrimSpace(target), "<>")
		b, err := url.Parse(base)
		if err != nil {
			return target
		}
		ref, err := b.Parse(target)
		if err != nil {
			return ""
		}
		return ref.String()
	}
	return ""
}

// ValidateRepo checks that repo is in owner/name form.
func ValidateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return ErrInvalidRepo
	}
	return nil
}
