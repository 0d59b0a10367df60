package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quarry/internal/assets"
	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
	chatRepo "quarry/internal/domain/repositories/chat"
)

// AssetImporter turns an external asset into synthetic import messages
// on a chat, optionally followed by a user prompt message. Import is
// best effort: a generation or chat-update failure is logged and the
// prompt message (when requested) is still created. The prompt message
// itself is not best effort.
type AssetImporter struct {
	generator   assets.Generator
	chatRepo    chatRepo.ChatRepository
	messageRepo chatRepo.MessageRepository
	logger      *slog.Logger
}

// NewAssetImporter creates an AssetImporter.
func NewAssetImporter(
	generator assets.Generator,
	chats chatRepo.ChatRepository,
	messages chatRepo.MessageRepository,
	logger *slog.Logger,
) *AssetImporter {
	return &AssetImporter{
		generator:   generator,
		chatRepo:    chats,
		messageRepo: messages,
		logger:      logger,
	}
}

// ImportAsset runs the import pipeline against the snapshot in place:
// generated import messages first, then the prompt message, so the
// ascending ordering invariant holds structurally. Returns the same
// snapshot for convenience.
func (i *AssetImporter) ImportAsset(
	ctx context.Context,
	chatID, assetID string,
	assetType chatModels.AssetType,
	user *identityModels.User,
	snapshot *chatModels.ChatSnapshot,
	prompt *string,
) (*chatModels.ChatSnapshot, error) {
	generated, err := i.generator.Generate(ctx, assets.GenerateParams{
		AssetID:   assetID,
		AssetType: assetType,
		UserID:    user.ID,
		ChatID:    chatID,
	})
	if err != nil {
		// Best effort: log with full context and fall through to the
		// prompt message.
		i.logger.Error("asset import generation failed",
			"chat_id", chatID,
			"asset_id", assetID,
			"asset_type", assetType,
			"user_id", user.ID,
			"error", err,
		)
		generated = nil
	}

	if len(generated) == 0 && err == nil {
		if prompt == nil {
			i.logger.Warn("asset produced no import messages",
				"chat_id", chatID,
				"asset_id", assetID,
				"asset_type", assetType,
			)
			return snapshot, nil
		}
	}

	if len(generated) > 0 {
		if importErr := i.applyImport(ctx, chatID, assetID, assetType, generated, snapshot); importErr != nil {
			i.logger.Error("asset import failed",
				"chat_id", chatID,
				"asset_id", assetID,
				"asset_type", assetType,
				"user_id", user.ID,
				"error", importErr,
			)
		}
	}

	if prompt != nil {
		promptMessage, err := i.createPromptMessage(ctx, chatID, user.ID, *prompt)
		if err != nil {
			return nil, err
		}
		appendToSnapshot(snapshot, promptMessage)
	}

	return snapshot, nil
}

// applyImport persists the generated messages, appends them to the
// snapshot, and applies the single post-import chat mutation.
func (i *AssetImporter) applyImport(
	ctx context.Context,
	chatID, assetID string,
	assetType chatModels.AssetType,
	generated []chatModels.Message,
	snapshot *chatModels.ChatSnapshot,
) error {
	for idx := range generated {
		message := &generated[idx]
		if _, exists := snapshot.Messages[message.ID]; exists {
			continue
		}
		if err := i.messageRepo.CreateMessage(ctx, message); err != nil {
			return err
		}
		appendToSnapshot(snapshot, message)
	}

	// The title only changes when an import message names the asset;
	// the file pointer updates either way.
	title := assetDisplayName(generated)
	if title == "" {
		title = snapshot.Title
	}

	// Imports always represent version 1 of the file in the chat.
	update := &chatModels.AssetUpdate{
		ChatID:        chatID,
		Title:         title,
		FileID:        assetID,
		FileType:      assetType,
		VersionNumber: 1,
	}
	if err := i.chatRepo.UpdateChatAsset(ctx, update); err != nil {
		return err
	}

	// Mirror onto the in-memory snapshot.
	snapshot.Title = title
	snapshot.MostRecentFileID = &update.FileID
	snapshot.MostRecentFileType = &update.FileType
	snapshot.MostRecentVersionNumber = &update.VersionNumber

	return nil
}

func (i *AssetImporter) createPromptMessage(ctx context.Context, chatID, userID, prompt string) (*chatModels.Message, error) {
	now := time.Now()
	message := &chatModels.Message{
		ID:                uuid.NewString(),
		ChatID:            chatID,
		CreatedBy:         userID,
		RequestMessage:    &prompt,
		ResponseMessages:  []any{},
		ReasoningMessages: []any{},
		IsCompleted:       false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := i.messageRepo.CreateMessage(ctx, message); err != nil {
		return nil, wrapStorageError(err, "create prompt message")
	}
	return message, nil
}

// appendToSnapshot adds a message to the end of the snapshot's
// ascending ordering. Idempotent: ids already present are skipped.
func appendToSnapshot(snapshot *chatModels.ChatSnapshot, message *chatModels.Message) {
	if _, exists := snapshot.Messages[message.ID]; exists {
		return
	}
	snapshot.Messages[message.ID] = ToSnapshotMessage(message)
	snapshot.MessageIDs = append(snapshot.MessageIDs, message.ID)
}

// assetDisplayName pulls the asset's display name off the generated
// import messages.
func assetDisplayName(generated []chatModels.Message) string {
	for _, message := range generated {
		if message.Title != nil && *message.Title != "" {
			return *message.Title
		}
	}
	return ""
}
