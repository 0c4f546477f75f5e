package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned when a write call succeeds without echoing
// the written record.
var ErrEmptyResponse = errors.New("gateway: empty response envelope")

// RetrievalError reports a non-success HTTP status from the POS API.
type RetrievalError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("gateway: %s: %s %s: status %d %s", e.Op, e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var re *RetrievalError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// IsStatus reports whether err is a RetrievalError with the given status.
func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}
