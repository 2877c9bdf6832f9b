package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/diillson/finly-dashboard-go/internal/shared/types"
)

// Error is returned for every HTTP response with status >= 400.
type Error struct {
	StatusCode int
	// Message is the backend provided message, empty when the body had none.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d (%s)", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is maps status codes onto the shared sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case types.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case types.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// BackendMessage returns the structured message of the body, if any.
func (e *Error) BackendMessage() string {
	return e.Message
}

func newError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
	}
	return apiErr
}
