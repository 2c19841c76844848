package git

import (
	"strings"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// ClassifyGitError translates go-git errors into ClassifiedErrors.
func ClassifyGitError(err error, op string, url string) error {
	if err == nil {
		return nil
	}

	// Already classified
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())

	builder := errors.GitError("git "+op+" failed").
		WithCause(err).
		WithContext("op", op)
	if url != "" {
		builder.WithContext("url", redactURL(url))
	}

	switch {
	case strings.Contains(l, "authentication required") || strings.Contains(l, "authentication failed") ||
		strings.Contains(l, "authorization failed") || strings.Contains(l, "invalid credentials"):
		builder.WithCategory(errors.CategoryAuth)
	case strings.Contains(l, "repository not found") || strings.Contains(l, "couldn't find remote ref") ||
		strings.Contains(l, "reference not found"):
		builder.WithCategory(errors.CategoryNotFound)
	case strings.Contains(l, "connection reset") || strings.Contains(l, "i/o timeout") ||
		strings.Contains(l, "no route to host") || strings.Contains(l, "connection refused"):
		builder.WithCategory(errors.CategoryNetwork)
	case strings.Contains(l, "non-fast-forward"):
		builder.WithContext("diverged", true)
	case strings.Contains(l, "unsupported scheme") || strings.Contains(l, "unsupported protocol"):
		builder.WithCategory(errors.CategoryConfig)
	}

	return builder.Build()
}

// redactURL drops userinfo so tokens embedded in remote URLs never reach logs.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		slash := strings.Index(rest, "/")
		if slash < 0 || at < slash {
			rest = rest[at+1:]
		}
	}
	return scheme + "://" + rest
}
