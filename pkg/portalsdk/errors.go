package portalsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError represents an error response from the portal API. It covers the
// two shapes the API produces: a detail object ({"detail": ..., "code": ...})
// and per-field validation errors ({"field": ["msg", ...]}).
type APIError struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code when the API supplies one
	// (e.g. "token_not_valid").
	Code string `json:"code"`

	// Detail is the human-readable description of the error.
	Detail string `json:"detail"`

	// Fields holds per-field validation messages, keyed by field name.
	Fields map[string][]string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Detail)
	}
	if len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
		}
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsForbidden reports whether err is an APIError with status 403.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// parseErrorResponse turns a non-2xx response body into a typed *APIError.
func parseErrorResponse(statusCode int, body []byte) error {
	// Detail-object shape first.
	var detail struct {
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return &APIError{StatusCode: statusCode, Code: detail.Code, Detail: detail.Detail}
	}

	// Field-validation shape: a flat object of field name to message list.
	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		return &APIError{StatusCode: statusCode, Fields: fields}
	}

	// Fallback: generic error from the status code.
	return &APIError{StatusCode: statusCode}
}
