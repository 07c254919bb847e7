package indexer

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ApiError is returned once a request to the indexer has failed for good,
// either because retries ran out or because the failure was not retryable.
// Callers treat it as "no data".
type ApiError struct {
	Message string
	Status  int
	Err     error
}

func (e *ApiError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %v", e.Message, e.Status, e.Err)
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an ApiError for a 404 response.
func IsNotFound(err error) bool {
	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	return false
}

// statusError is the per-attempt error for a non-2xx response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.status, e.body)
}
