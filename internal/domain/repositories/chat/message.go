package chat

import (
	"context"

	chatModels "quarry/internal/domain/models/chat"
)

// MessageRepository is the persistence contract for chat messages.
// List operations return newest-first; the snapshot builder reverses
// into the ascending order callers see.
type MessageRepository interface {
	// CreateMessage inserts a message row. Participates in a context
	// transaction when one is present.
	CreateMessage(ctx context.Context, message *chatModels.Message) error

	// GetMessage retrieves a single message, deleted or not.
	GetMessage(ctx context.Context, messageID string) (*chatModels.Message, error)

	// ListMessages returns the non-deleted messages of a chat,
	// newest-first.
	ListMessages(ctx context.Context, chatID string) ([]chatModels.Message, error)

	// SoftDeleteMessagesFrom marks as deleted the target message and
	// every not-yet-deleted message in the same chat created at or
	// after it. Idempotent: rerunning matches no rows. Callers verify
	// the target exists; an unknown id is a silent zero-row update.
	SoftDeleteMessagesFrom(ctx context.Context, messageID string) error

	// UpdateMessage applies the non-nil fields of update to a message.
	UpdateMessage(ctx context.Context, messageID string, update *chatModels.MessageUpdate) error
}
