package usecase

import (
	"errors"

	"github.com/diillson/finly-dashboard-go/internal/shared/types"
)

// UserMessage converts an error into the message shown to the user: the
// backend message when there is one, then the error text, then fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var backendErr types.BackendError
	if errors.As(err, &backendErr) && backendErr.BackendMessage() != "" {
		return backendErr.BackendMessage()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
