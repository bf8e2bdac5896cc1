package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := &AppError{Code: "NOT_FOUND", Message: "listing with id 42 not found"}
	assert.Equal(t, "NOT_FOUND: listing with id 42 not found", err.Error())

	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: errors.New("disk full")}
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestAppError_Unwrap(t *testing.T) {
	err := NotFound("listing", "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithDetail(t *testing.T) {
	base := InvalidInput("check-in date is invalid")
	detailed := base.WithDetail(map[string]string{"dateFrom": "must be in the future"})

	assert.Nil(t, base.Detail, "original must be untouched")
	require.NotNil(t, detailed.Detail)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("listing", "42"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("bad"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("no"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("no"), "FORBIDDEN", http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("dup"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"unavailable", ServiceUnavailable("down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Transport(cause)

	assert.Equal(t, "TRANSPORT_FAILURE", err.Code)
	assert.Equal(t, fallbackMessage, err.Message)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Err.Error(), "connection refused")
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(Unauthorized("expired")))
	assert.True(t, IsAuthFailure(fmt.Errorf("call failed: %w", Unauthorized("expired"))))
	assert.False(t, IsAuthFailure(NotFound("listing", "1")))
	assert.False(t, IsAuthFailure(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthorized("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("wrap: %w", ErrInvalidInput)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}
