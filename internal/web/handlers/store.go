package handlers

import (
	"errors"
	"sync"

	"github.com/atelierlog/reportcard/internal/session"
)

// ErrSessionNotFound means no live session carries the requested id.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps live designer sessions in memory. Sessions are not safe for
// concurrent use themselves, so every access runs under the session's own
// lock via Do. Nothing here survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu sync.Mutex
	s  *session.Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// Put registers a session under its id.
func (st *Store) Put(s *session.Session) {
	st.mu.Lock()
	st.sessions[s.ID] = &entry{s: s}
	st.mu.Unlock()
}

// Do runs fn with exclusive access to the named session.
func (st *Store) Do(id string, fn func(*session.Session) error) error {
	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.s)
}

// Delete discards a session. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
