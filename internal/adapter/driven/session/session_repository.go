package session

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Fixed keys of the persisted client state.
const (
	TokenKey  = "finly.auth_token"
	UserIDKey = "finly.user_id"
)

// SessionRepositoryImpl persists the session in a small sqlite key/value table.
type SessionRepositoryImpl struct {
	conn *sql.DB
}

// NewSessionRepository opens (or creates) the state database at path.
func NewSessionRepository(path string) (repository.SessionRepository, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening state database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening state database: %w", err)
	}

	r := &SessionRepositoryImpl{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return r, nil
}

func (r *SessionRepositoryImpl) migrate() error {
	_, err := r.conn.Exec(`CREATE TABLE IF NOT EXISTS client_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("error migrating state database: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) get(key string) (string, error) {
	var value string
	err := r.conn.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Load returns an empty session when no token is stored.
func (r *SessionRepositoryImpl) Load() (entity.Session, error) {
	token, err := r.get(TokenKey)
	if err != nil {
		return entity.Session{}, fmt.Errorf("error reading session: %w", err)
	}
	if token == "" {
		return entity.Session{}, nil
	}
	userID, err := r.get(UserIDKey)
	if err != nil {
		return entity.Session{}, fmt.Errorf("error reading session: %w", err)
	}
	return entity.Session{Token: token, UserID: entity.UserID(userID)}, nil
}

func (r *SessionRepositoryImpl) Save(session entity.Session) error {
	tx, err := r.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := `INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := tx.Exec(upsert, TokenKey, session.Token); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	if session.UserID == "" {
		if _, err := tx.Exec(`DELETE FROM client_state WHERE key = ?`, UserIDKey); err != nil {
			return fmt.Errorf("error saving session: %w", err)
		}
	} else if _, err := tx.Exec(upsert, UserIDKey, string(session.UserID)); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return tx.Commit()
}

func (r *SessionRepositoryImpl) Clear() error {
	if _, err := r.conn.Exec(`DELETE FROM client_state WHERE key IN (?, ?)`, TokenKey, UserIDKey); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) Close() error {
	return r.conn.Close()
}
