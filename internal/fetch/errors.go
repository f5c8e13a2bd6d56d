package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredentials is returned before any network attempt when the
	// credentials for an upstream are not configured.
	ErrMissingCredentials = errors.New("fetch: credentials not configured")
	// ErrExhausted is returned when every attempt timed out.
	ErrExhausted = errors.New("fetch: all attempts timed out")
	// ErrUnauthorized matches a *StatusError with status 401 or 403.
	ErrUnauthorized = errors.New("fetch: upstream rejected credentials")
)

// StatusError captures non-2xx upstream responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}
