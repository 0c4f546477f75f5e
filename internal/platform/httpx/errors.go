// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/pos"
)

// ErrNotFound marks a missing record or route resource.
var ErrNotFound = errors.New("resource not found")

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var retrieval *gateway.RetrievalError
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, pos.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &retrieval):
		Problem(w, http.StatusBadGateway, "Upstream Error",
			fmt.Sprintf("POS API returned status %d", retrieval.StatusCode))
	case errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusGatewayTimeout, "Timeout", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
