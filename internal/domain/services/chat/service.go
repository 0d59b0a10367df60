package chat

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
)

// ChatService is the caller-facing contract for chat creation and
// resumption.
type ChatService interface {
	// CreateChat creates a new chat or appends to an existing one,
	// optionally importing an asset, and hands analysis work to the
	// background agent. Returns the assembled snapshot.
	CreateChat(ctx context.Context, req *ChatRequest, user *identityModels.User) (*chatModels.ChatSnapshot, error)

	// GetChatSnapshot assembles the snapshot of an existing chat.
	GetChatSnapshot(ctx context.Context, chatID, userID string) (*chatModels.ChatSnapshot, error)

	// RedoFromMessage soft-deletes a message and everything after it
	// in the same chat.
	RedoFromMessage(ctx context.Context, chatID, messageID, userID string) error

	// UpdateChatTitle renames a chat.
	UpdateChatTitle(ctx context.Context, chatID, userID, title string) error
}

// ChatRequest is the create-or-resume envelope. Either a prompt, an
// asset, or both must be present; chat_id switches between creating a
// fresh chat and appending to an existing one.
type ChatRequest struct {
	ChatID            *string               `json:"chat_id,omitempty"`
	MessageID         *string               `json:"message_id,omitempty"`
	Prompt            *string               `json:"prompt,omitempty"`
	AssetID           *string               `json:"asset_id,omitempty"`
	AssetType         *chatModels.AssetType `json:"asset_type,omitempty"`
	RedoFromMessageID *string               `json:"redo_from_message_id,omitempty"`
	ShortcutIDs       []string              `json:"shortcut_ids,omitempty"`
}

// Validate enforces the field combinations the orchestrator accepts:
// asset_type is required whenever asset_id is present, and at least one
// of prompt or asset_id must be given.
func (r *ChatRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AssetType,
			validation.Required.When(r.AssetID != nil).Error("asset_type is required when asset_id is provided"),
			validation.In(chatModels.AssetTypeMetric, chatModels.AssetTypeDashboard),
		),
		validation.Field(&r.Prompt,
			validation.Required.When(r.AssetID == nil).Error("either prompt or asset_id must be provided"),
		),
	)
}

// HasAsset reports whether the request carries an asset reference.
func (r *ChatRequest) HasAsset() bool {
	return r.AssetID != nil && r.AssetType != nil
}

// HasPrompt reports whether the request carries a non-empty prompt.
func (r *ChatRequest) HasPrompt() bool {
	return r.Prompt != nil && *r.Prompt != ""
}

// UpdateChatTitleRequest is the DTO for renaming a chat.
type UpdateChatTitleRequest struct {
	Title string `json:"title"`
}

// Validate enforces a non-empty title.
func (r *UpdateChatTitleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
	)
}
