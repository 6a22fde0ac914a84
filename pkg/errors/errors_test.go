package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("Hospital", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Forbidden("Not enough permissions", nil), http.StatusBadRequest},
		{Conflict("Selected time slot is not available", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Unavailable("down", nil), http.StatusServiceUnavailable},
		{Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), tt.err.Message)
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "Hospital not found", NotFound("Hospital", nil).Message)
	assert.Equal(t, "Doctor not found", NotFound("Doctor", nil).Message)
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	inner := NotFound("Appointment", nil)
	wrapped := fmt.Errorf("handling request: %w", inner)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound, appErr.Code)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestErrorIncludesCause(t *testing.T) {
	err := Internal(fmt.Errorf("pq: connection refused"))
	assert.Contains(t, err.Error(), "connection refused")
}
