package oauthsdk

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when a header or response body cannot be parsed.
	ErrMalformed = errors.New("oauthsdk: malformed input")

	// ErrAccessDenied mirrors the provider's 401 "Access Denied" response.
	ErrAccessDenied = errors.New("oauthsdk: access denied")
)

// StatusError is returned for unexpected HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oauthsdk: unexpected status %d: %s", e.StatusCode, e.Body)
}
