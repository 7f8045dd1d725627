package memory

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
)

var _ output.CachePort = (*SessionCache)(nil)

const (
	cacheTTL      = time.Hour
	cacheCapacity = 256
	maxTurns      = 50
)

// SessionCache holds short-lived conversational context. Keyed entries ride
// an expiring LRU; the conversation turn list is trimmed to the most recent
// maxTurns and expires with the rest.
type SessionCache struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, map[string]any]
	turns   []entity.ConversationTurn
	turnsAt time.Time
}

func NewSessionCache() *SessionCache {
	return &SessionCache{
		entries: expirable.NewLRU[string, map[string]any](cacheCapacity, nil, cacheTTL),
	}
}

func (c *SessionCache) StoreTurn(turn entity.ConversationTurn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireTurnsLocked()
	c.turns = append(c.turns, turn)
	if len(c.turns) > maxTurns {
		c.turns = c.turns[len(c.turns)-maxTurns:]
	}
	c.turnsAt = time.Now()
}

// History returns the most recent turns, newest last.
func (c *SessionCache) History(limit int) []entity.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireTurnsLocked()
	if limit <= 0 || limit > len(c.turns) {
		limit = len(c.turns)
	}
	out := make([]entity.ConversationTurn, limit)
	copy(out, c.turns[len(c.turns)-limit:])
	return out
}

func (c *SessionCache) StoreBrowserState(state map[string]any) {
	c.entries.Add("browser_state", state)
}

func (c *SessionCache) BrowserState() map[string]any {
	state, _ := c.entries.Get("browser_state")
	return state
}

func (c *SessionCache) StoreWorkflowState(id string, state map[string]any) {
	c.entries.Add("workflow:"+id, state)
}

func (c *SessionCache) WorkflowState(id string) map[string]any {
	state, _ := c.entries.Get("workflow:" + id)
	return state
}

func (c *SessionCache) StoreExtracted(dataType string, data map[string]any) {
	c.entries.Add("extracted:"+dataType, data)
}

func (c *SessionCache) Extracted(dataType string) map[string]any {
	data, _ := c.entries.Get("extracted:" + dataType)
	return data
}

func (c *SessionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
	c.turns = nil
}

func (c *SessionCache) expireTurnsLocked() {
	if len(c.turns) > 0 && time.Since(c.turnsAt) > cacheTTL {
		c.turns = nil
	}
}
