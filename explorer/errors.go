package explorer

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the explorer answers 404.
	ErrNotFound = errors.New("not found")

	// ErrUpstream is returned for any other non-2xx answer.
	ErrUpstream = errors.New("upstream error")
)

// StatusError records a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrUpstream
}
