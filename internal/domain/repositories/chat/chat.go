package chat

import (
	"context"

	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
)

// ChatWithCreator bundles a chat row with its creator and the
// requesting user's favorite flag, fetched in one round trip.
type ChatWithCreator struct {
	Chat        chatModels.Chat
	Creator     identityModels.User
	IsFavorited bool
}

// ChatRepository is the persistence contract for chat containers.
type ChatRepository interface {
	// CreateChat inserts a new chat row. Participates in a context
	// transaction when one is present.
	CreateChat(ctx context.Context, chat *chatModels.Chat) error

	// GetChat retrieves a chat by ID.
	GetChat(ctx context.Context, chatID string) (*chatModels.Chat, error)

	// GetChatWithCreator retrieves a chat with its creator row and the
	// favorite flag for the given user.
	GetChatWithCreator(ctx context.Context, chatID, userID string) (*ChatWithCreator, error)

	// UpdateChatAsset applies the post-import mutation: title plus the
	// most-recently-imported-file pointer, in a single statement.
	UpdateChatAsset(ctx context.Context, update *chatModels.AssetUpdate) error

	// UpdateChatTitle renames a chat.
	UpdateChatTitle(ctx context.Context, chatID, title string) error
}
