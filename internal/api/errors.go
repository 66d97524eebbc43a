// ABOUTME: Typed API errors and the status-to-message table
// ABOUTME: Detail text is pulled from the server's detail, error or message field

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrConnection wraps transport failures: refused connections, DNS, timeouts.
var ErrConnection = errors.New("connection error")

var statusMessages = map[int]string{
	http.StatusBadRequest:          "invalid data",
	http.StatusUnauthorized:        "invalid credentials or expired session",
	http.StatusForbidden:           "you do not have permission for this action",
	http.StatusNotFound:            "resource not found",
	http.StatusUnprocessableEntity: "validation error or duplicate data",
	http.StatusTooManyRequests:     "too many requests, try again later",
	http.StatusInternalServerError: "internal server error",
}

const defaultStatusMessage = "unexpected error"

// StatusMessage returns the user-facing message for an HTTP status.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return defaultStatusMessage
}

// Error is a non-2xx API response.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
	Detail  string
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

// Text is the line shown to operators: the server detail when present,
// the status message otherwise.
func (e *Error) Text() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func asError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func hasStatus(err error, statuses ...int) bool {
	apiErr := asError(err)
	if apiErr == nil {
		return false
	}
	for _, s := range statuses {
		if apiErr.Status == s {
			return true
		}
	}
	return false
}

// IsUnauthorized reports a 401 response.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsForbidden reports a 403 response.
func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsDuplicate reports a 422 or 400 response, which the backend uses for
// duplicate identifications and links.
func IsDuplicate(err error) bool {
	return hasStatus(err, http.StatusUnprocessableEntity, http.StatusBadRequest)
}

// IsRateLimited reports a 429 response.
func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

// Message returns the operator-facing text for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr := asError(err); apiErr != nil {
		return apiErr.Text()
	}
	if errors.Is(err, ErrConnection) {
		return "could not reach the server, check your connection"
	}
	return err.Error()
}

// newError builds an *Error from a response body.
func newError(method, path string, status int, body []byte) *Error {
	return &Error{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: StatusMessage(status),
		Detail:  extractDetail(body),
	}
}

// extractDetail understands {"detail": "..."}, {"detail": [{"msg": ...}]},
// {"error": "..."} and {"message": "..."}.
func extractDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}

	if len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(payload.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
