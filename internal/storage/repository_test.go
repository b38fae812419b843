package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"worklog/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "worklog.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testUser(id, email string) core.User {
	return core.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		Role:         core.RoleUser,
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    time.Now(),
	}
}

func testEntry(id, userID, date string) core.TimeEntry {
	d, _ := core.ParseDate(date)
	return core.TimeEntry{
		ID:          id,
		UserID:      userID,
		Date:        d,
		StartTime:   "09:00",
		EndTime:     "17:00",
		Category:    "Development",
		Subcategory: "Backend",
		Description: "work",
		Hours:       8,
		CreatedAt:   time.Now(),
	}
}

func TestUserCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := testUser("u1", "alice@example.com")
	if err := repo.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := repo.CreateUser(ctx, testUser("u2", "alice@example.com"))
		if !errors.Is(err, core.ErrEmailTaken) {
			t.Errorf("CreateUser() error = %v, want ErrEmailTaken", err)
		}
	})

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := repo.GetUserByID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUserByID() error: %v", err)
		}
		byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail() error: %v", err)
		}
		if byID.ID != byEmail.ID || byID.Email != u.Email || byID.Role != core.RoleUser {
			t.Errorf("lookups disagree: %+v vs %+v", byID, byEmail)
		}
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update profile", func(t *testing.T) {
		u.Name = "Alice Renamed"
		u.Role = core.RoleAdmin
		if err := repo.UpdateUser(ctx, u); err != nil {
			t.Fatalf("UpdateUser() error: %v", err)
		}
		got, _ := repo.GetUserByID(ctx, "u1")
		if got.Name != "Alice Renamed" || got.Role != core.RoleAdmin {
			t.Errorf("update not applied: %+v", got)
		}
	})

	t.Run("update password", func(t *testing.T) {
		if err := repo.UpdateUserPassword(ctx, "u1", "newhash"); err != nil {
			t.Fatalf("UpdateUserPassword() error: %v", err)
		}
		got, _ := repo.GetUserByID(ctx, "u1")
		if got.PasswordHash != "newhash" {
			t.Errorf("password hash = %q, want newhash", got.PasswordHash)
		}
	})

	t.Run("list users", func(t *testing.T) {
		if err := repo.CreateUser(ctx, testUser("u3", "bob@example.com")); err != nil {
			t.Fatalf("CreateUser() error: %v", err)
		}
		users, err := repo.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers() error: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("got %d users, want 2", len(users))
		}
	})
}

func TestEntryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, testUser("u1", "alice@example.com")); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	e := testEntry("e1", "u1", "2024-01-15")
	if err := repo.CreateEntry(ctx, e); err != nil {
		t.Fatalf("CreateEntry() error: %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetEntry(ctx, "e1")
		if err != nil {
			t.Fatalf("GetEntry() error: %v", err)
		}
		if got.Date.String() != "2024-01-15" || got.Hours != 8 || got.Category != "Development" {
			t.Errorf("GetEntry() = %+v", got)
		}
	})

	t.Run("update queues re-export", func(t *testing.T) {
		e.Description = "updated"
		e.EndTime = "18:00"
		e.Hours = 9
		if err := repo.UpdateEntry(ctx, e); err != nil {
			t.Fatalf("UpdateEntry() error: %v", err)
		}

		if err := repo.MarkExported(ctx, "e1"); err != nil {
			t.Fatalf("MarkExported() error: %v", err)
		}
		pending, _ := repo.ListEntriesPendingExport(ctx, 10)
		if len(pending) != 0 {
			t.Fatalf("got %d pending after export, want 0", len(pending))
		}

		if err := repo.UpdateEntry(ctx, e); err != nil {
			t.Fatalf("UpdateEntry() error: %v", err)
		}
		pending, _ = repo.ListEntriesPendingExport(ctx, 10)
		if len(pending) != 1 {
			t.Errorf("got %d pending after update, want 1", len(pending))
		}
	})

	t.Run("mark export error keeps entry retryable", func(t *testing.T) {
		if err := repo.MarkExportError(ctx, "e1"); err != nil {
			t.Fatalf("MarkExportError() error: %v", err)
		}
		pending, _ := repo.ListEntriesPendingExport(ctx, 10)
		if len(pending) != 1 {
			t.Errorf("got %d pending after error, want 1: errored entries stay in the backlog scan", len(pending))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.DeleteEntry(ctx, "e1"); err != nil {
			t.Fatalf("DeleteEntry() error: %v", err)
		}
		if err := repo.DeleteEntry(ctx, "e1"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteEntry() error = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteUserCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, testUser("u1", "alice@example.com")); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if err := repo.CreateUser(ctx, testUser("u2", "bob@example.com")); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	for i, date := range []string{"2024-01-15", "2024-01-16", "2024-01-17"} {
		if err := repo.CreateEntry(ctx, testEntry(string(rune('a'+i)), "u1", date)); err != nil {
			t.Fatalf("CreateEntry() error: %v", err)
		}
	}
	if err := repo.CreateEntry(ctx, testEntry("z", "u2", "2024-01-15")); err != nil {
		t.Fatalf("CreateEntry() error: %v", err)
	}

	removed, err := repo.DeleteUser(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed %d entries, want 3", removed)
	}

	mine, err := repo.ListEntriesByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEntriesByUser() error: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("got %d entries for deleted user, want 0", len(mine))
	}

	others, _ := repo.ListEntriesByUser(ctx, "u2")
	if len(others) != 1 {
		t.Errorf("other users' entries must survive the cascade, got %d", len(others))
	}

	if _, err := repo.DeleteUser(ctx, "u1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteUser() error = %v, want ErrNotFound", err)
	}
}
