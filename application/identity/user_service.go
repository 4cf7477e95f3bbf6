package identity

import (
	"context"
	"sort"
	"strings"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/store"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UserService handles user account management. All operations require
// the Admin role; authorization is enforced here, not at any UI layer.
type UserService struct {
	store    *store.Store
	logger   *zap.Logger
	validate *validator.Validate
}

// NewUserService creates a new UserService
func NewUserService(st *store.Store, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		store:    st,
		logger:   logger,
		validate: validator.New(),
	}
}

// Create adds a new user account. Emails are the login key, so
// duplicates are rejected.
func (s *UserService) Create(ctx context.Context, actor *identity.User, req CreateUserRequest) (*identity.User, error) {
	if err := requireUserManager(actor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	var created *identity.User
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if d.FindUserByEmail(email) != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
		}

		user, err := identity.NewUser(d.Counters.NextUser(), req.Username, email, req.Password, req.Role)
		if err != nil {
			return err
		}

		d.Users = append(d.Users, *user)
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.Int64("id", created.ID),
		zap.String("username", created.Username),
		zap.String("role", string(created.Role)))

	return created, nil
}

// Update changes a user's profile fields
func (s *UserService) Update(ctx context.Context, actor *identity.User, id int64, req UpdateUserRequest) (*identity.User, error) {
	if err := requireUserManager(actor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	var updated identity.User
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		user := d.FindUser(id)
		if user == nil {
			return shared.ErrNotFound
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if other := d.FindUserByEmail(email); other != nil && other.ID != id {
			return shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
		}

		if err := user.Update(req.Username, email); err != nil {
			return err
		}
		updated = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a user account. The acting admin cannot delete their
// own account. Orders placed by the user are retained.
func (s *UserService) Delete(ctx context.Context, actor *identity.User, id int64) error {
	if err := requireUserManager(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete the currently authenticated account")
	}

	err := s.store.Update(ctx, func(d *store.Dataset) error {
		for i := range d.Users {
			if d.Users[i].ID == id {
				d.Users = append(d.Users[:i], d.Users[i+1:]...)
				return nil
			}
		}
		return shared.ErrNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.Int64("id", id))
	return nil
}

// List returns all user accounts ordered by ID
func (s *UserService) List(ctx context.Context, actor *identity.User) ([]identity.User, error) {
	if err := requireUserManager(actor); err != nil {
		return nil, err
	}

	var users []identity.User
	s.store.View(func(d *store.Dataset) {
		users = append([]identity.User(nil), d.Users...)
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func requireUserManager(actor *identity.User) error {
	if actor == nil {
		return shared.ErrUnauthorized
	}
	if !actor.Role.CanManageUsers() {
		return shared.ErrForbidden
	}
	return nil
}
