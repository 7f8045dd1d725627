package output

import (
	"context"

	"voicebrowser/internal/domain/entity"
)

// BrowserPort executes canonical actions against the live remote document.
// Execute never returns an error: every failure, including failing to obtain
// a session, is reported inside the Result so workflows can keep going.
type BrowserPort interface {
	Execute(ctx context.Context, action entity.Action) entity.Result

	// PageContent snapshots the current document without mutating it.
	PageContent(ctx context.Context) (*entity.PageContent, error)

	// Shutdown releases the underlying remote session. Best-effort.
	Shutdown(ctx context.Context) error
}
