package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
)

type principalRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type sessionRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Clear(ctx context.Context) error
}

// IdentityStore tracks the single signed-in principal of a local session and keeps it
// persisted across restarts.
type IdentityStore struct {
	mu       sync.RWMutex
	current  *models.User
	users    principalRepository
	sessions sessionRepository
	verifier CredentialVerifier
	logger   *zap.Logger
}

// NewIdentityStore constructs an IdentityStore. Call Restore to pick up a persisted session.
func NewIdentityStore(users principalRepository, sessions sessionRepository, verifier CredentialVerifier, logger *zap.Logger) *IdentityStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityStore{users: users, sessions: sessions, verifier: verifier, logger: logger}
}

// Restore loads the persisted principal. Missing or unreadable data leaves the store signed out.
func (s *IdentityStore) Restore(ctx context.Context) {
	raw, err := s.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionMissing) {
			s.logger.Debug("no persisted session")
		} else {
			s.logger.Warn("failed to read persisted session", zap.Error(err))
		}
		return
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil || user.ID == "" || !user.Role.Valid() {
		s.logger.Warn("discarding malformed session record", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()
	s.logger.Debug("session restored", zap.String("user_id", user.ID))
}

// Current returns a copy of the signed-in principal, or nil.
func (s *IdentityStore) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// SignIn authenticates by exact email. Bad credentials yield false without an error and
// leave the session untouched.
func (s *IdentityStore) SignIn(ctx context.Context, email, password string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("sign in rejected")
			return false, nil
		}
		return false, fmt.Errorf("lookup principal: %w", err)
	}
	if s.verifier == nil || !s.verifier.Verify(user, password) {
		s.logger.Info("sign in rejected")
		return false, nil
	}

	if err := s.setCurrent(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return true, nil
}

// SignUp registers a new principal and signs it in. The password is not recorded and
// duplicate emails are accepted.
func (s *IdentityStore) SignUp(ctx context.Context, req models.RegisterRequest) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate principal id: %w", err)
	}
	user := &models.User{
		ID:        id.String(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		Matricula: req.Matricula,
		Curso:     req.Curso,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("register principal: %w", err)
	}
	if err := s.setCurrent(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return true, nil
}

// SignOut clears the current principal and its persisted record.
func (s *IdentityStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Users lists every registered principal.
func (s *IdentityStore) Users(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *IdentityStore) setCurrent(ctx context.Context, user *models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.sessions.Save(ctx, payload); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.current = user.Clone()
	s.mu.Unlock()
	return nil
}
