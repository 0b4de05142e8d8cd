package pagination

import "sync"

// Store maps rendered message ids to their sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (s *Store) Put(messageID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[messageID] = sess
}

func (s *Store) Get(messageID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[messageID]
	return sess, ok
}

// Remove drops messageID, but only if it still maps to sess.
func (s *Store) Remove(messageID string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[messageID] == sess {
		delete(s.sessions, messageID)
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseAll closes and forgets every session.
func (s *Store) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}
