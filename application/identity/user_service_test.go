package identity

import (
	"context"
	"testing"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedActors(t *testing.T, st *store.Store) (admin, user identity.User) {
	t.Helper()
	st.View(func(d *store.Dataset) {
		admin = *d.FindUserByEmail(store.SeedAdminEmail)
		user = *d.FindUserByEmail(store.SeedUserEmail)
	})
	return admin, user
}

func TestUserService_Create(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	admin, _ := seedActors(t, st)

	created, err := svc.Create(context.Background(), &admin, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "alicepass",
		Role:     identity.RoleUser,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), created.ID, "IDs come from the monotonic counter")
	assert.Equal(t, "alice@example.com", created.Email)
	assert.True(t, created.VerifyPassword("alicepass"))
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	admin, _ := seedActors(t, st)

	_, err := svc.Create(context.Background(), &admin, CreateUserRequest{
		Username: "imposter",
		Email:    store.SeedAdminEmail,
		Password: "whatever1",
		Role:     identity.RoleUser,
	})
	require.Error(t, err)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
}

func TestUserService_Create_Authorization(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	_, user := seedActors(t, st)

	req := CreateUserRequest{Username: "x", Email: "x@example.com", Password: "password1", Role: identity.RoleUser}

	_, err := svc.Create(context.Background(), nil, req)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Create(context.Background(), &user, req)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUserService_Update(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	admin, user := seedActors(t, st)

	updated, err := svc.Update(context.Background(), &admin, user.ID, UpdateUserRequest{
		Username: "john_renamed",
		Email:    "john@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "john_renamed", updated.Username)

	// Taking another account's email is rejected.
	_, err = svc.Update(context.Background(), &admin, user.ID, UpdateUserRequest{
		Username: "john_renamed",
		Email:    store.SeedAdminEmail,
	})
	assert.Error(t, err)

	_, err = svc.Update(context.Background(), &admin, 999, UpdateUserRequest{
		Username: "ghost",
		Email:    "ghost@example.com",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserService_Delete(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	admin, user := seedActors(t, st)

	require.NoError(t, svc.Delete(context.Background(), &admin, user.ID))

	st.View(func(d *store.Dataset) {
		assert.Nil(t, d.FindUser(user.ID))
		assert.NotNil(t, d.FindUser(admin.ID))
	})

	assert.ErrorIs(t, svc.Delete(context.Background(), &admin, user.ID), shared.ErrNotFound)
}

func TestUserService_Delete_Self(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	admin, _ := seedActors(t, st)

	err := svc.Delete(context.Background(), &admin, admin.ID)
	require.Error(t, err)

	st.View(func(d *store.Dataset) {
		assert.NotNil(t, d.FindUser(admin.ID))
	})
}

func TestUserService_List(t *testing.T) {
	st := newTestStore(t)
	svc := NewUserService(st, zap.NewNop())
	admin, user := seedActors(t, st)

	users, err := svc.List(context.Background(), &admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, int64(2), users[1].ID)

	_, err = svc.List(context.Background(), &user)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}
