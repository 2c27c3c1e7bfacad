package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-success answer from the store. Message is the store's
// own text when it sent one.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unauthorized reports a 401; the caller must drop its credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ServerFault reports a 5xx answer.
func (e *APIError) ServerFault() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// Rejected reports that the store refused the request on its merits (a 4xx
// other than 401, or a 2xx carrying success=false). Its current state is
// authoritative.
func (e *APIError) Rejected() bool {
	return !e.Unauthorized() && e.StatusCode < http.StatusInternalServerError
}

// Conflict reports a refusal about the entity's state: a 409, a 422, or a
// 2xx carrying success=false. A missing or forbidden entity is not one.
func (e *APIError) Conflict() bool {
	switch {
	case e.StatusCode == http.StatusConflict, e.StatusCode == http.StatusUnprocessableEntity:
		return true
	case e.StatusCode >= http.StatusOK && e.StatusCode < http.StatusMultipleChoices:
		return true
	}
	return false
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    serverMessage(status, body),
	}
}

func serverMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
