package memory

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store holds per-session conversations. Sessions expire after a TTL
// of inactivity and the LRU cap bounds how many live at once; both
// stand in for the session lifecycle the caller never signals.
type Store struct {
	mu           sync.Mutex
	sessions     *expirable.LRU[string, *Conversation]
	turnCapacity int
}

func NewStore(turnCapacity, maxSessions int, ttl time.Duration) *Store {
	if maxSessions <= 0 {
		maxSessions = 4096
	}
	return &Store{
		sessions:     expirable.NewLRU[string, *Conversation](maxSessions, nil, ttl),
		turnCapacity: turnCapacity,
	}
}

// Get returns the conversation for sessionID, creating it on first use.
func (s *Store) Get(sessionID string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.sessions.Get(sessionID); ok {
		return conv
	}
	conv := NewConversation(s.turnCapacity)
	s.sessions.Add(sessionID, conv)
	return conv
}

// Peek returns the conversation without creating one.
func (s *Store) Peek(sessionID string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Get(sessionID)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Len()
}
