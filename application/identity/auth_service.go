package identity

import (
	"context"
	"sync"
	"time"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService tracks the currently authenticated identity and verifies
// credentials against the stored bcrypt hashes
type AuthService struct {
	store    *store.Store
	logger   *zap.Logger
	validate *validator.Validate

	mu      sync.Mutex
	current *Session
}

// NewAuthService creates a new AuthService
func NewAuthService(st *store.Store, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:    st,
		logger:   logger,
		validate: validator.New(),
	}
}

// Login authenticates the given credentials. On failure it returns
// ErrInvalidCredentials and changes no state.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	var user *identity.User
	s.store.View(func(d *store.Dataset) {
		if u := d.FindUserByEmail(req.Email); u != nil {
			dup := *u
			user = &dup
		}
	})

	if user == nil {
		s.logger.Warn("Login attempt for unknown email", zap.String("email", req.Email))
		return nil, shared.ErrInvalidCredentials
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Login attempt with wrong password", zap.String("email", req.Email))
		return nil, shared.ErrInvalidCredentials
	}

	session := &Session{
		ID:         uuid.New(),
		User:       *user,
		LoggedInAt: time.Now(),
	}

	if err := s.store.SaveSession(store.SessionSnapshot{
		ID:         session.ID,
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		LoggedInAt: session.LoggedInAt,
	}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.logger.Info("Login successful",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return session, nil
}

// Logout clears the current identity and the persisted session snapshot
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return s.store.ClearSession()
}

// Restore re-establishes a logged-in state from the persisted session
// snapshot, if one exists and still refers to a known user. A stale
// snapshot is cleared.
func (s *AuthService) Restore(ctx context.Context) (*Session, error) {
	snap, err := s.store.LoadSession()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}

	var user *identity.User
	s.store.View(func(d *store.Dataset) {
		if u := d.FindUser(snap.UserID); u != nil {
			dup := *u
			user = &dup
		}
	})

	if user == nil {
		s.logger.Warn("Session snapshot refers to deleted user", zap.Int64("user_id", snap.UserID))
		_ = s.store.ClearSession()
		return nil, nil
	}

	session := &Session{
		ID:         snap.ID,
		User:       *user,
		LoggedInAt: snap.LoggedInAt,
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	return session, nil
}

// Current returns the active session, or nil when logged out
func (s *AuthService) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
