// Package session holds server-side login sessions. Tokens are opaque
// random strings handed out as cookies; the store bounds both lifetime
// and count.
package session

import (
	"container/list"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"worklog/internal/core"
)

const tokenBytes = 32

// Session is one authenticated login.
type Session struct {
	Token     string
	UserID    string
	Email     string
	Name      string
	Role      core.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Viewer derives the access scope for this session.
func (s Session) Viewer() core.Viewer {
	return core.Viewer{UserID: s.UserID, Privileged: s.Role.Privileged()}
}

// Store is an LRU session table with TTL and size-based eviction.
// When the table is full the least recently used session is logged out.
type Store struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Create mints a session for the user and returns it.
func (s *Store) Create(user core.User) (Session, error) {
	token, err := newToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now()
	sess := Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem := s.lru.PushFront(sess)
	s.items[token] = elem

	if s.lru.Len() > s.maxSize {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}

	return sess, nil
}

// Get returns the session for a token. Expired sessions are removed on
// the way out.
func (s *Store) Get(token string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[token]
	if !ok {
		return Session{}, false
	}

	sess := elem.Value.(Session)
	if time.Now().After(sess.ExpiresAt) {
		s.removeElement(elem)
		return Session{}, false
	}

	s.lru.MoveToFront(elem)
	return sess, true
}

// Delete logs out one session.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[token]; ok {
		s.removeElement(elem)
	}
}

// DeleteForUser logs out every session belonging to the user. Called
// when an account is deleted or its password reset.
func (s *Store) DeleteForUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var toRemove []*list.Element
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(Session).UserID == userID {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem)
	}
	return len(toRemove)
}

// CleanExpired removes expired sessions and returns the count removed.
func (s *Store) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(Session).ExpiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of live sessions.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// StartCleanup runs CleanExpired on a timer until stop is closed.
func (s *Store) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanExpired()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Store) removeElement(elem *list.Element) {
	delete(s.items, elem.Value.(Session).Token)
	s.lru.Remove(elem)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
