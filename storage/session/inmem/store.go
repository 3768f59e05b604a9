// Package inmemsession stores the sessions in an arena of entries indexed by token.
// Freed slots are reused, so the arena never grows past the peak number of concurrent sessions.
package inmemsession

import (
	"context"
	"sync"

	"github.com/teamunity/lms/core/session"
)

type Store struct {
	mu    sync.RWMutex
	arena []session.Session
	index map[string]int // token -> arena slot
	free  []int
}

var _ session.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

func (s *Store) Save(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.index[sess.Token]; ok {
		s.arena[slot] = sess
		return nil
	}

	var slot int
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
		s.arena[slot] = sess
	} else {
		slot = len(s.arena)
		s.arena = append(s.arena, sess)
	}
	s.index[sess.Token] = slot
	return nil
}

func (s *Store) Get(_ context.Context, token string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if slot, ok := s.index[token]; ok {
		return s.arena[slot], nil
	}
	return session.Session{}, session.ErrNotFound
}

func (s *Store) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.index[token]
	if !ok {
		return nil
	}
	delete(s.index, token)
	s.arena[slot] = session.Session{}
	s.free = append(s.free, slot)
	return nil
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

func (s *Store) PingContext(context.Context) error {
	return nil
}
