package types

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized: the session has expired or the token is invalid")
	ErrNotFound           = errors.New("resource not found")
	ErrNotAuthenticated   = errors.New("not logged in. Please run `finly login` first")
	ErrNoBudget           = errors.New("no budget found. Please create one with `finly budget create`")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionExpired     = errors.New("your session has expired. Please log in again")
)

// BackendError is implemented by errors that may carry a message sent by the backend.
type BackendError interface {
	error
	BackendMessage() string
}
