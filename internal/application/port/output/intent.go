package output

import (
	"context"

	"voicebrowser/internal/domain/entity"
)

// IntentPort classifies a finished transcript into a structured intent.
// Implementations own their own rate limiting; callers may invoke
// concurrently.
type IntentPort interface {
	ParseIntent(ctx context.Context, transcript string, context map[string]any) (entity.Intent, error)

	// ParseMultiStep breaks a compound command into an ordered intent list.
	// Falls back to a single-element list when decomposition fails.
	ParseMultiStep(ctx context.Context, transcript string, context map[string]any) ([]entity.Intent, error)
}
