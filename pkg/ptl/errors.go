package ptl

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common static errors that can be wrapped with context.
var (
	ErrMissingCredentials   = errors.New("cannot find credentials file or ACCESS_KEY and SECRET_KEY")
	ErrManifestNotFound     = errors.New("cannot find manifest in any path")
	ErrManifestNameRequired = errors.New("manifest name is required")
	ErrNoRepoContext        = errors.New("cannot undeploy an app that doesn't have a repo context")
	ErrIdentityNotValidated = errors.New("credentials have not been validated")
	ErrEndpointRequired     = errors.New("API endpoint is required")
)

// APIError is a non-2xx HTTP response from the PushToLive API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// StatusError is a call that succeeded at the HTTP level but reported a
// Status other than "Okay".
type StatusError struct {
	Operation string
	Status    string
	Reason    string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s failed with status %q", e.Operation, e.Status)
	}

	return fmt.Sprintf("%s failed with status %q: %s", e.Operation, e.Status, e.Reason)
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsServerError checks if the error is a 5xx from the API.
func IsServerError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	return false
}

// IsClientError checks if the error is a 4xx from the API.
func IsClientError(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError
	}

	return false
}

// Reason returns the server-supplied reason of a StatusError, if any.
func Reason(err error) (string, bool) {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) && statusErr.Reason != "" {
		return statusErr.Reason, true
	}

	return "", false
}
