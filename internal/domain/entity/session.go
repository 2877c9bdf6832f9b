package entity

// SessionState is the state of the client side authentication flow.
type SessionState string

const (
	SessionAnonymous     SessionState = "anonymous"
	SessionVerifying     SessionState = "verifying"
	SessionAuthenticated SessionState = "authenticated"
)

// Session holds the bearer token and, once known, the user id.
type Session struct {
	Token  string
	UserID UserID
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
