package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested work does not exist on the remote catalog
var ErrNotFound = errors.New("work not found")

// TransportError represents a network failure, a non-success HTTP status or a
// malformed response from the catalog API.
type TransportError struct {
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog request failed: %v", e.Err)
	}
	return fmt.Sprintf("catalog request failed: HTTP %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
