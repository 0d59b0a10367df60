package chat

import (
	"context"
	"log/slog"
	"time"

	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
	"quarry/internal/domain/repositories"
	chatRepo "quarry/internal/domain/repositories/chat"
)

// NewChatCreator creates a chat and, when a prompt is supplied, its
// first message inside one transaction. A partially created chat is
// never observable.
type NewChatCreator struct {
	chatRepo    chatRepo.ChatRepository
	messageRepo chatRepo.MessageRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewChatCreatorService creates a NewChatCreator.
func NewChatCreatorService(
	chats chatRepo.ChatRepository,
	messages chatRepo.MessageRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *NewChatCreator {
	return &NewChatCreator{
		chatRepo:    chats,
		messageRepo: messages,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create atomically inserts the chat row and an optional first prompt
// message, then returns the snapshot built from the fresh rows.
func (c *NewChatCreator) Create(
	ctx context.Context,
	chatID, messageID, title string,
	prompt *string,
	user *identityModels.User,
	organizationID string,
) (*chatModels.ChatSnapshot, error) {
	now := time.Now()
	chat := &chatModels.Chat{
		ID:             chatID,
		Title:          title,
		OrganizationID: organizationID,
		CreatedBy:      user.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var message *chatModels.Message
	if prompt != nil {
		message = &chatModels.Message{
			ID:                messageID,
			ChatID:            chatID,
			CreatedBy:         user.ID,
			RequestMessage:    prompt,
			ResponseMessages:  []any{},
			ReasoningMessages: []any{},
			IsCompleted:       false,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}

	err := c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := c.chatRepo.CreateChat(txCtx, chat); err != nil {
			return err
		}
		if message != nil {
			if err := c.messageRepo.CreateMessage(txCtx, message); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("chat created",
		"chat_id", chat.ID,
		"title", chat.Title,
		"organization_id", organizationID,
		"user_id", user.ID,
		"with_message", message != nil,
	)

	var messages []chatModels.Message
	if message != nil {
		messages = []chatModels.Message{*message}
	}

	return BuildSnapshot(chat, messages, user, false), nil
}
