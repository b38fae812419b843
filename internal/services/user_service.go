package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"worklog/internal/core"
)

// UserUpdate is a partial profile replace; nil fields keep their value.
type UserUpdate struct {
	Email *string
	Name  *string
	Role  *core.Role
}

// UserService is the admin account-management surface.
type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (core.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// Update applies a partial profile edit.
func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (core.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return core.User{}, err
	}

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email != user.Email {
			if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
				return core.User{}, core.ErrEmailTaken
			}
			user.Email = email
		}
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}

	if err := user.Validate(); err != nil {
		return core.User{}, err
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes the account. The store cascades to the user's time
// entries; the count of removed entries is reported back.
func (s *UserService) Delete(ctx context.Context, id string) (int64, error) {
	removed, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "User account deleted",
		"user_id", id,
		"entries_removed", removed)

	return removed, nil
}
