package client

import (
	"encoding/json"
	"log/slog"
	"sync"

	"eventx/models"
)

const sessionKey = "myevents_user"

// Session is the signed-in identity, if any. It replaces ad hoc lookups in
// the store: callers ask User() and get nil when nobody is signed in.
type Session struct {
	store Store

	mu   sync.RWMutex
	user *models.PublicUser
}

// LoadSession restores the identity saved in store. Unreadable entries are
// removed and yield an empty session.
func LoadSession(store Store) (*Session, error) {
	s := &Session{store: store}

	raw, ok, err := store.Get(sessionKey)
	if err != nil {
		slog.Warn("session store unreadable, starting signed out", "error", err)
		return s, store.Delete(sessionKey)
	}
	if !ok {
		return s, nil
	}

	var u models.PublicUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		slog.Warn("discarding corrupt session", "error", err)
		return s, store.Delete(sessionKey)
	}
	s.user = &u
	return s, nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) SignIn(u models.PublicUser) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(sessionKey, string(raw)); err != nil {
		return err
	}
	s.user = &u
	return nil
}

func (s *Session) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	return s.store.Delete(sessionKey)
}
