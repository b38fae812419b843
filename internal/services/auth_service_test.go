package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"worklog/internal/core"
	"worklog/internal/memory"
)

func TestAuthServiceRegister(t *testing.T) {
	store := memory.New()
	svc := NewAuthService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Alice@Example.COM ", "s3cret-pass", " Alice ")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, core.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash, "password must never be stored in clear")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	_, err = svc.Register(ctx, "alice@example.com", "another-pass", "Alice Again")
	assert.ErrorIs(t, err, core.ErrEmailTaken)

	_, err = svc.Register(ctx, "bob@example.com", "short", "Bob")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthServiceCreateUserRole(t *testing.T) {
	svc := NewAuthService(memory.New())

	admin, err := svc.CreateUser(context.Background(), "root@example.com", "s3cret-pass", "Root", core.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, admin.Role)
	assert.True(t, admin.Viewer().Privileged)
}

func TestAuthServiceLogin(t *testing.T) {
	store := memory.New()
	svc := NewAuthService(store)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, "Alice@Example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("account without hash never logs in", func(t *testing.T) {
		broken := registered
		broken.ID = "no-hash"
		broken.Email = "broken@example.com"
		broken.PasswordHash = ""
		require.NoError(t, store.CreateUser(ctx, broken))

		_, err := svc.Login(ctx, "broken@example.com", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthServiceChangePassword(t *testing.T) {
	store := memory.New()
	svc := NewAuthService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "old-password", "Alice")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "wrong-old", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "old-password", "tiny")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-password", "new-password"))

	_, err = svc.Login(ctx, "alice@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice@example.com", "new-password")
	assert.NoError(t, err)
}

func TestAuthServiceResetPassword(t *testing.T) {
	svc := NewAuthService(memory.New())
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "old-password", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "reset-password"))

	_, err = svc.Login(ctx, "alice@example.com", "reset-password")
	assert.NoError(t, err)
}
