package output

import (
	"context"

	"voicebrowser/internal/domain/entity"
)

// SessionProviderPort is the operational contract with the browser-hosting
// provider: allocate a session, release it, peek at its debugger. The wire
// format behind it is deliberately not part of this interface.
type SessionProviderPort interface {
	CreateSession(ctx context.Context, projectID string) (entity.SessionInfo, error)
	DeleteSession(ctx context.Context, id string) error
	DebugURL(ctx context.Context, id string) (string, error)
	ListSessions(ctx context.Context) ([]entity.SessionInfo, error)
}
