package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredEnvelope(t *testing.T) {
	resp := fakeResponse(http.StatusBadRequest,
		`{"error":{"code":"INVALID_INPUT","message":"check-out must be after check-in"}}`)

	err := ParseResponseError(resp, "lodging search")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "check-out must be after check-in", appErr.Message, "server message surfaces verbatim")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParseResponseError_FieldDetail(t *testing.T) {
	resp := fakeResponse(http.StatusBadRequest,
		`{"error":{"code":"INVALID_INPUT","message":"validation failed","fields":{"adults":"must be at least 1"}}}`)

	err := ParseResponseError(resp, "lodging search")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	detail, ok := appErr.Detail.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at least 1", detail["adults"])
}

func TestParseResponseError_Unauthorized(t *testing.T) {
	resp := fakeResponse(http.StatusUnauthorized, `{"error":{"code":"UNAUTHORIZED","message":"token expired"}}`)

	err := ParseResponseError(resp, "booking")

	assert.True(t, apperrors.IsAuthFailure(err))
}

func TestParseResponseError_NotFound(t *testing.T) {
	resp := fakeResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"listing with id 42 not found"}}`)

	err := ParseResponseError(resp, "listing detail")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "listing with id 42 not found")
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := fakeResponse(http.StatusBadRequest, `<html>Bad Request</html>`)

	err := ParseResponseError(resp, "lodging search")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotContains(t, appErr.Message, "<html>", "raw server output must never surface")
}

func TestParseResponseError_ServerError(t *testing.T) {
	resp := fakeResponse(http.StatusInternalServerError, `oops`)

	err := ParseResponseError(resp, "booking")

	assert.ErrorIs(t, err, apperrors.ErrTransport)
}

func TestParseResponseError_ServiceUnavailable(t *testing.T) {
	resp := fakeResponse(http.StatusServiceUnavailable, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"maintenance"}}`)

	err := ParseResponseError(resp, "search")

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusInternalServerError))
}
