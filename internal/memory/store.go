// Package memory provides a mutex-guarded in-memory store. It is the
// default backend and the test double; every read hands out independent
// copies so callers cannot corrupt stored state without a write-back.
package memory

import (
	"context"
	"sync"

	"worklog/internal/core"
)

type Store struct {
	mu         sync.Mutex
	users      map[string]core.User
	userOrder  []string
	entries    map[string]core.TimeEntry
	entryOrder []string
}

func New() *Store {
	return &Store{
		users:   make(map[string]core.User),
		entries: make(map[string]core.TimeEntry),
	}
}

// Ping always succeeds; the in-memory backend has no connection to lose.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return core.ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.userOrder {
		if u := s.users[id]; u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[u.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Email = u.Email
	stored.Name = u.Name
	stored.Role = u.Role
	s.users[u.ID] = stored
	return nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	stored.PasswordHash = passwordHash
	s.users[id] = stored
	return nil
}

// DeleteUser removes the user and cascades to all of the user's entries.
func (s *Store) DeleteUser(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return 0, core.ErrNotFound
	}
	delete(s.users, id)
	s.userOrder = remove(s.userOrder, id)

	var removed int64
	kept := s.entryOrder[:0]
	for _, eid := range s.entryOrder {
		if s.entries[eid].UserID == id {
			delete(s.entries, eid)
			removed++
			continue
		}
		kept = append(kept, eid)
	}
	s.entryOrder = kept
	return removed, nil
}

func (s *Store) CreateEntry(_ context.Context, e core.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	s.entryOrder = append(s.entryOrder, e.ID)
	return nil
}

func (s *Store) GetEntry(_ context.Context, id string) (core.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return core.TimeEntry{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListEntries(_ context.Context) ([]core.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TimeEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *Store) ListEntriesByUser(_ context.Context, userID string) ([]core.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TimeEntry
	for _, id := range s.entryOrder {
		if e := s.entries[id]; e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) UpdateEntry(_ context.Context, e core.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[e.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Date = e.Date
	stored.StartTime = e.StartTime
	stored.EndTime = e.EndTime
	stored.Category = e.Category
	stored.Subcategory = e.Subcategory
	stored.Description = e.Description
	stored.Hours = e.Hours
	s.entries[e.ID] = stored
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.entries, id)
	s.entryOrder = remove(s.entryOrder, id)
	return nil
}

func remove(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
