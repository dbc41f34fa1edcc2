package schema_registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the schema registry. Code carries the
// registry's own error code (e.g. 40403 for "schema not found") when the
// response body was parseable.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("schema registry returned status %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("schema registry returned status %d", e.StatusCode)
}

// newAPIError builds an APIError from a registry error response body. The
// registry reports errors as {"error_code": N, "message": "..."}; bodies that
// don't parse still yield the HTTP status.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed struct {
		ErrorCode int    `json:"error_code"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Code = parsed.ErrorCode
		apiErr.Message = parsed.Message
	} else if len(body) > 0 {
		apiErr.Message = string(body)
	}
	return apiErr
}

// isNotFound reports whether err is a registry 404.
func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
