package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"worklog/internal/core"
)

const minPasswordLength = 8

var (
	// ErrInvalidCredentials is deliberately generic: login failures never
	// reveal whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// AuthService handles registration, login, and password changes.
// Credentials are stored as bcrypt hashes only; an account without a hash
// can never log in.
type AuthService struct {
	store UserStore
	cost  int
}

func NewAuthService(store UserStore) *AuthService {
	return &AuthService{store: store, cost: bcrypt.DefaultCost}
}

// Register creates a regular-role account with a hashed credential.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (core.User, error) {
	return s.createUser(ctx, email, password, name, core.RoleUser)
}

// CreateUser creates an account with an explicit role; the admin user
// management surface goes through here.
func (s *AuthService) CreateUser(ctx context.Context, email, password, name string, role core.Role) (core.User, error) {
	return s.createUser(ctx, email, password, name, role)
}

func (s *AuthService) createUser(ctx context.Context, email, password, name string, role core.Role) (core.User, error) {
	if len(password) < minPasswordLength {
		return core.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return core.User{}, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User account created",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return user, nil
}

// Login verifies the credential and returns the account. The bcrypt
// comparison is constant time; a missing hash always fails.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}

	if user.PasswordHash == "" {
		return core.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces a user's credential after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "user_id", userID)
	return nil
}

// ResetPassword sets a new credential without the old one; admin-only
// surface, authorization is the caller's job.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, userID, string(hash))
}
