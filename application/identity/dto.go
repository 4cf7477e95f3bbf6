package identity

import (
	"time"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/google/uuid"
)

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest carries the fields for a new user account
type CreateUserRequest struct {
	Username string        `json:"username" validate:"required,max=50"`
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required,min=8,max=72"`
	Role     identity.Role `json:"role" validate:"required"`
}

// UpdateUserRequest carries profile updates for an existing user
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

// Session is the currently authenticated identity
type Session struct {
	ID         uuid.UUID
	User       identity.User
	LoggedInAt time.Time
}

// Actor returns the authenticated user, or nil for a nil session
func (s *Session) Actor() *identity.User {
	if s == nil {
		return nil
	}
	return &s.User
}
