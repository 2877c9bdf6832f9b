package repository

import "github.com/diillson/finly-dashboard-go/internal/domain/entity"

// SessionRepository persists the session between runs of the client.
type SessionRepository interface {
	// Load returns an empty session when nothing is stored.
	Load() (entity.Session, error)
	Save(session entity.Session) error
	Clear() error
	Close() error
}
