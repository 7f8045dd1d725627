package output

import (
	"context"

	"voicebrowser/internal/domain/entity"
)

// CachePort is the short-lived, session-scoped context store. Entries expire
// on their own; none of the operations fail loudly.
type CachePort interface {
	StoreTurn(turn entity.ConversationTurn)
	History(limit int) []entity.ConversationTurn

	StoreBrowserState(state map[string]any)
	BrowserState() map[string]any

	StoreWorkflowState(id string, state map[string]any)
	WorkflowState(id string) map[string]any

	StoreExtracted(dataType string, data map[string]any)
	Extracted(dataType string) map[string]any

	Clear()
}

// MemoryPort is the long-term store: it survives sessions and supports
// semantic recall over everything the agent has done.
type MemoryPort interface {
	StoreConversation(ctx context.Context, transcript string, action entity.Action, success bool) error
	StoreBrowserContext(ctx context.Context, url, title string, extracted map[string]any) error
	StoreWorkflow(ctx context.Context, name string, steps, succeeded int) error

	Search(ctx context.Context, query string, limit int) ([]entity.MemoryHit, error)
}
