// Package session holds the client-side authentication state: the current
// token pair and the signed-in user. A single Store instance is shared by
// every request the client makes, so all access goes through a lock.
package session

import "sync"

// User is the signed-in account as reported by the server.
type User struct {
	ID    string
	Email string
}

// Store is a concurrency-safe holder for one session.
type Store struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         User
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the whole session atomically.
func (s *Store) Set(accessToken, refreshToken string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = user
}

// SetTokens replaces the token pair and keeps the user. Used after a refresh.
func (s *Store) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear drops the session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = User{}
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Store) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a session is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}
