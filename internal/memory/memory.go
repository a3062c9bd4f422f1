package memory

import (
	"sync"
	"time"

	"github.com/xxxsen/mrag/internal/model"
)

// Conversation is a bounded FIFO window of completed turns for one
// session. Appends and reads are serialized so concurrent queries on
// the same session cannot break the eviction order.
type Conversation struct {
	mu       sync.Mutex
	capacity int
	nextSeq  int
	turns    []model.ConversationTurn
}

func NewConversation(capacity int) *Conversation {
	if capacity <= 0 {
		capacity = 1
	}
	return &Conversation{capacity: capacity}
}

// Append records a finished turn, evicting the oldest turns once the
// window exceeds capacity.
func (c *Conversation) Append(query, answer string, citations []model.Citation) model.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	turn := model.ConversationTurn{
		Seq:       c.nextSeq,
		Query:     query,
		Answer:    answer,
		Citations: citations,
		Ctime:     time.Now().UnixMilli(),
	}
	c.turns = append(c.turns, turn)
	if excess := len(c.turns) - c.capacity; excess > 0 {
		c.turns = append([]model.ConversationTurn(nil), c.turns[excess:]...)
	}
	return turn
}

// Recent returns up to limit of the latest turns in chronological
// order (oldest first).
func (c *Conversation) Recent(limit int) []model.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limit <= 0 || len(c.turns) == 0 {
		return nil
	}
	if limit > len(c.turns) {
		limit = len(c.turns)
	}
	out := make([]model.ConversationTurn, limit)
	copy(out, c.turns[len(c.turns)-limit:])
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}
