package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/AlessioMITRM/hogu-frontend-sub001/pkg/errors"
)

// apiErrorResponse mirrors the error envelope returned by the Hogu API:
//
//	{"error": {"code": "...", "message": "...", "fields": {...}}}
type apiErrorResponse struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and
// translates it into an AppError. When the body matches the standard API
// envelope, the server-provided code, message and field details are
// preserved verbatim; otherwise the caller gets a status-appropriate
// error with the generic fallback message.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Transport(fmt.Errorf("%s returned status %d (failed to read body: %w)", operation, resp.StatusCode, err))
	}

	var envelope apiErrorResponse
	if json.Unmarshal(bodyBytes, &envelope) == nil && envelope.Error != nil {
		appErr := mapAPIError(resp.StatusCode, envelope.Error.Code, envelope.Error.Message, operation)
		if len(envelope.Error.Fields) > 0 {
			appErr = appErr.WithDetail(envelope.Error.Fields)
		}
		return appErr
	}

	// Unstructured body: never show raw server output to the user.
	return mapAPIError(resp.StatusCode, "", "", operation)
}

// mapAPIError translates an HTTP status plus optional server code/message
// into an AppError. An empty message falls back to a generic one per class.
func mapAPIError(status int, code, message, operation string) *apperrors.AppError {
	switch {
	case status == http.StatusNotFound:
		if message != "" {
			return &apperrors.AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: apperrors.ErrNotFound}
		}
		return apperrors.NotFound(operation, "requested")
	case status == http.StatusBadRequest:
		if message == "" {
			message = "the request was rejected by the server"
		}
		return apperrors.InvalidInput(message)
	case status == http.StatusUnauthorized:
		if message == "" {
			message = "authorization failed"
		}
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		if message == "" {
			message = "access denied"
		}
		return apperrors.Forbidden(message)
	case status == http.StatusConflict:
		if message == "" {
			message = "the request conflicts with the current state"
		}
		return apperrors.Conflict(message)
	case status == http.StatusUnprocessableEntity:
		if message == "" {
			message = "the request could not be processed"
		}
		return apperrors.InvalidInput(message)
	case status == http.StatusServiceUnavailable:
		if message == "" {
			message = "service is temporarily unavailable"
		}
		return apperrors.ServiceUnavailable(message)
	case status >= 500:
		return apperrors.Transport(fmt.Errorf("%s server error (%d/%s): %s", operation, status, code, message))
	default:
		if message == "" {
			message = fmt.Sprintf("%s failed with status %d", operation, status)
		}
		return &apperrors.AppError{Code: code, Message: message, Status: status}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
