package identity

import (
	"context"

	identityModels "quarry/internal/domain/models/identity"
)

// UserRepository resolves users and their organization membership.
type UserRepository interface {
	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*identityModels.User, error)

	// GetUserOrganization returns the user's organization id, or ""
	// when the user has none.
	GetUserOrganization(ctx context.Context, userID string) (string, error)
}

// ShortcutRecorder tracks which prompt shortcuts a user most recently
// used. Recording is best effort; callers swallow failures.
type ShortcutRecorder interface {
	RecordLastUsed(ctx context.Context, userID string, shortcutIDs []string) error
}
