package memory

import (
	"context"
	"errors"
	"testing"

	"worklog/internal/core"
)

func TestStoreUserLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, core.User{ID: "u1", Email: "a@x.com", Name: "A", Role: core.RoleUser}); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if err := s.CreateUser(ctx, core.User{ID: "u2", Email: "a@x.com"}); !errors.Is(err, core.ErrEmailTaken) {
		t.Errorf("CreateUser() duplicate email error = %v, want ErrEmailTaken", err)
	}

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	if err != nil || got.ID != "u1" {
		t.Errorf("GetUserByEmail() = %+v, %v", got, err)
	}
	if _, err := s.GetUserByID(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestStoreReadsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.CreateUser(ctx, core.User{ID: "u1", Email: "a@x.com", Name: "A", Role: core.RoleUser})

	u, _ := s.GetUserByID(ctx, "u1")
	u.Name = "mutated"

	again, _ := s.GetUserByID(ctx, "u1")
	if again.Name != "A" {
		t.Errorf("caller mutation leaked into the store: %+v", again)
	}
}

func TestStoreDeleteUserCascade(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.CreateUser(ctx, core.User{ID: "u1", Email: "a@x.com", Name: "A", Role: core.RoleUser})
	_ = s.CreateUser(ctx, core.User{ID: "u2", Email: "b@x.com", Name: "B", Role: core.RoleUser})
	_ = s.CreateEntry(ctx, core.TimeEntry{ID: "e1", UserID: "u1", Date: core.NewDate(2024, 1, 15)})
	_ = s.CreateEntry(ctx, core.TimeEntry{ID: "e2", UserID: "u1", Date: core.NewDate(2024, 1, 16)})
	_ = s.CreateEntry(ctx, core.TimeEntry{ID: "e3", UserID: "u2", Date: core.NewDate(2024, 1, 15)})

	removed, err := s.DeleteUser(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	mine, _ := s.ListEntriesByUser(ctx, "u1")
	if len(mine) != 0 {
		t.Errorf("got %d entries for deleted user, want 0", len(mine))
	}
	all, _ := s.ListEntries(ctx)
	if len(all) != 1 || all[0].ID != "e3" {
		t.Errorf("ListEntries() = %+v, want only e3", all)
	}
}

func TestStoreEntryOrderStable(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		_ = s.CreateEntry(ctx, core.TimeEntry{ID: id, UserID: "u1"})
	}

	all, _ := s.ListEntries(ctx)
	want := []string{"c", "a", "b"}
	for i, e := range all {
		if e.ID != want[i] {
			t.Fatalf("entry order = %v, want %v", all, want)
		}
	}
}

func TestStoreUpdateEntry(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.CreateEntry(ctx, core.TimeEntry{ID: "e1", UserID: "u1", Description: "old"})
	err := s.UpdateEntry(ctx, core.TimeEntry{ID: "e1", Description: "new", Hours: 4})
	if err != nil {
		t.Fatalf("UpdateEntry() error: %v", err)
	}

	got, _ := s.GetEntry(ctx, "e1")
	if got.Description != "new" || got.Hours != 4 {
		t.Errorf("UpdateEntry() not applied: %+v", got)
	}
	if got.UserID != "u1" {
		t.Errorf("UpdateEntry() must not change ownership, got %q", got.UserID)
	}

	if err := s.UpdateEntry(ctx, core.TimeEntry{ID: "missing"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateEntry() error = %v, want ErrNotFound", err)
	}
}
