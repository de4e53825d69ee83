package state

import "sync"

type session[S any] struct {
	mu    sync.Mutex
	state S
}

// Store holds one session of type S per user. Updates for the same user run one at a time;
// different users proceed concurrently.
type Store[S any] struct {
	mu       sync.Mutex
	sessions map[int64]*session[S]
}

// NewStore constructs an empty in-memory Store.
func NewStore[S any]() *Store[S] {
	return &Store[S]{sessions: make(map[int64]*session[S])}
}

func (s *Store[S]) entry(userID int64) *session[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session[S]{}
		s.sessions[userID] = sess
	}
	return sess
}

// Get returns a copy of the user's state, or the zero value when none exists.
func (s *Store[S]) Get(userID int64) S {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		var zero S
		return zero
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Update runs fn with exclusive access to the user's state, creating it on first use.
// Changes made by fn are kept even when it returns an error.
func (s *Store[S]) Update(userID int64, fn func(*S) error) error {
	sess := s.entry(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(&sess.state)
}

// Len reports how many users currently have a session.
func (s *Store[S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
