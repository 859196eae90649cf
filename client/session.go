// Package client is the application-side half of Inkbytr: a REST consumer,
// an explicit session-state object mirrored to durable storage, and an
// entity cache driven by a pure reducer.
package client

import (
	"errors"
	"os"
	"sync"
	"time"

	"inkbytr/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore is the single durable slot holding the raw session token.
// Identity and role are always re-derived from the token on load, never
// stored redundantly.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type FileTokenStore struct {
	Path string
}

func (s FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s FileTokenStore) Save(token string) error {
	return os.WriteFile(s.Path, []byte(token), 0o600)
}

func (s FileTokenStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type Identity struct {
	ID   string
	Role string
}

// SessionState holds the decoded session token for UI gating. The decode
// is deliberately unverified: the authoritative check is always the
// server's. Constructed explicitly; there are no package-level reads of
// the store.
type SessionState struct {
	mu       sync.RWMutex
	store    TokenStore
	token    string
	identity *Identity
}

func NewSessionState(store TokenStore) (*SessionState, error) {
	s := &SessionState{store: store}
	if err := s.Rehydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rehydrate re-reads the durable slot. A stored token that is expired or
// undecodable is discarded from the slot as well, so the next start is
// clean.
func (s *SessionState) Rehydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		s.token = ""
		s.identity = nil
		return nil
	}

	identity, ok := decodeIdentity(token)
	if !ok {
		s.token = ""
		s.identity = nil
		return s.store.Clear()
	}
	s.token = token
	s.identity = identity
	return nil
}

// SetToken installs a fresh token (login, verification, password reset)
// and mirrors it synchronously to the store. Memory is updated first; a
// failed mirror leaves memory state standing.
func (s *SessionState) SetToken(token string) error {
	identity, ok := decodeIdentity(token)
	if !ok {
		return errors.New("invalid session token")
	}

	s.mu.Lock()
	s.token = token
	s.identity = identity
	s.mu.Unlock()
	return s.store.Save(token)
}

// Logout discards the client-held token; the server keeps no session
// state, so this is the only invalidation short of expiry.
func (s *SessionState) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.identity = nil
	s.mu.Unlock()
	return s.store.Clear()
}

func (s *SessionState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionState) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *SessionState) IsAuthenticated() bool {
	_, ok := s.Identity()
	return ok
}

func decodeIdentity(token string) (*Identity, bool) {
	claims := &utils.SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, false
	}
	return &Identity{ID: claims.UserID, Role: claims.Role}, true
}
