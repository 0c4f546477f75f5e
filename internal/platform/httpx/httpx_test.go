package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/pos"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("product 9: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad page size", pos.ErrValidation), http.StatusBadRequest},
		{&gateway.RetrievalError{Op: "list products", StatusCode: 500}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("dial tcp 10.0.0.1: refused"))
	assert.NotContains(t, rr.Body.String(), "10.0.0.1")
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Page int `json:"page"`
	}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"page":2}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, 2, target.Page)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"pages":2}`))
	assert.ErrorIs(t, DecodeJSON(req, &target), pos.ErrValidation)
}
