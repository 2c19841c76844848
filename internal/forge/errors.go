package forge

import (
	"fmt"
	"net/http"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// ErrInvalidRepo signals a repository name that is not "owner/name".
var ErrInvalidRepo = errors.ValidationError("repository must be in owner/name form").Build()

// statusError classifies a non-2xx GitHub response.
func statusError(resp *http.Response, endpoint string) error {
	var b *errors.ErrorBuilder
	msg := fmt.Sprintf("GitHub API error: %s", resp.Status)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		b = errors.AuthError(msg)
	case http.StatusNotFound:
		b = errors.NewError(errors.CategoryNotFound, msg)
	default:
		b = errors.NetworkError(msg)
	}
	return b.WithContext("endpoint", endpoint).WithContext("status", resp.StatusCode).Build()
}
