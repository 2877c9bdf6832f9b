package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
)

// AuthUseCase drives the session state machine:
// anonymous -> verifying -> authenticated, and back to anonymous on logout,
// failed verification or any 401 from the backend.
type AuthUseCase struct {
	api      repository.BudgetAPI
	sessions repository.SessionRepository
	console  types.ConsoleInterface

	mu      sync.RWMutex
	state   entity.SessionState
	session entity.Session
	user    *entity.User
}

// NewAuthUseCase creates a new auth use case in the anonymous state.
func NewAuthUseCase(
	api repository.BudgetAPI,
	sessions repository.SessionRepository,
	console types.ConsoleInterface,
) *AuthUseCase {
	return &AuthUseCase{
		api:      api,
		sessions: sessions,
		console:  console,
		state:    entity.SessionAnonymous,
	}
}

func (uc *AuthUseCase) State() entity.SessionState {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state
}

func (uc *AuthUseCase) Session() entity.Session {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.session
}

func (uc *AuthUseCase) Token() string {
	return uc.Session().Token
}

// User returns the verified user, or nil before verification.
func (uc *AuthUseCase) User() *entity.User {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.user == nil {
		return nil
	}
	u := *uc.user
	return &u
}

// Restore verifies a persisted token. Without a persisted token the state
// stays anonymous and no request is made.
func (uc *AuthUseCase) Restore(ctx context.Context) error {
	persisted, err := uc.sessions.Load()
	if err != nil {
		return err
	}
	if !persisted.Authenticated() {
		return nil
	}

	uc.mu.Lock()
	uc.state = entity.SessionVerifying
	uc.session = persisted
	uc.mu.Unlock()

	user, err := uc.api.GetUserInfo(ctx, persisted.Token)
	if err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			if clearErr := uc.clear(); clearErr != nil {
				uc.console.LogError("Failed to clear session: %s", clearErr)
			}
		} else {
			// falha de rede: o token salvo continua valendo para a próxima execução
			uc.forget()
		}
		return fmt.Errorf("session verification failed: %w", err)
	}

	uc.mu.Lock()
	uc.state = entity.SessionAuthenticated
	uc.mu.Unlock()
	return uc.RememberUser(user)
}

// Login exchanges credentials for a token and stores it.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) error {
	token, err := uc.api.Login(ctx, entity.Credentials{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			return types.ErrInvalidCredentials
		}
		return err
	}
	return uc.establish(token)
}

// Register creates the account and stores the returned token.
func (uc *AuthUseCase) Register(ctx context.Context, in entity.RegisterInput) error {
	token, err := uc.api.Register(ctx, in)
	if err != nil {
		return err
	}
	return uc.establish(token)
}

// Logout always ends the local session; the backend call is best effort.
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	if token := uc.Token(); token != "" {
		if err := uc.api.Logout(ctx, token); err != nil {
			uc.console.LogWarning("Backend logout failed: %s", UserMessage(err, "unknown error"))
		}
	}
	return uc.clear()
}

// Refresh replaces the stored token when the backend issues a new one.
func (uc *AuthUseCase) Refresh(ctx context.Context) error {
	current := uc.Session()
	if !current.Authenticated() {
		return types.ErrNotAuthenticated
	}
	token, err := uc.api.RefreshToken(ctx, current.Token)
	if err != nil {
		if uc.HandleError(err) {
			return types.ErrSessionExpired
		}
		return err
	}
	if token == "" || token == current.Token {
		return nil
	}

	uc.mu.Lock()
	uc.session.Token = token
	session := uc.session
	uc.mu.Unlock()
	return uc.sessions.Save(session)
}

// RememberUser records the verified user and persists its id with the token.
func (uc *AuthUseCase) RememberUser(user entity.User) error {
	uc.mu.Lock()
	if uc.state == entity.SessionAnonymous {
		// a sessão terminou enquanto a requisição estava em andamento
		uc.mu.Unlock()
		return nil
	}
	uc.user = &user
	changed := uc.session.UserID != user.ID
	uc.session.UserID = user.ID
	session := uc.session
	uc.mu.Unlock()

	if !changed || !session.Authenticated() {
		return nil
	}
	return uc.sessions.Save(session)
}

// HandleError ends the session when err is a 401 and reports whether it did.
func (uc *AuthUseCase) HandleError(err error) bool {
	if err == nil || !errors.Is(err, types.ErrUnauthorized) {
		return false
	}
	if uc.State() == entity.SessionAnonymous {
		return false
	}
	if clearErr := uc.clear(); clearErr != nil {
		uc.console.LogError("Failed to clear session: %s", clearErr)
	}
	return true
}

func (uc *AuthUseCase) establish(token string) error {
	uc.mu.Lock()
	uc.state = entity.SessionAuthenticated
	uc.session = entity.Session{Token: token}
	uc.user = nil
	uc.mu.Unlock()
	return uc.sessions.Save(entity.Session{Token: token})
}

// forget volta ao estado anônimo sem apagar a sessão persistida.
func (uc *AuthUseCase) forget() {
	uc.mu.Lock()
	uc.state = entity.SessionAnonymous
	uc.session = entity.Session{}
	uc.user = nil
	uc.mu.Unlock()
}

func (uc *AuthUseCase) clear() error {
	uc.forget()
	return uc.sessions.Clear()
}
