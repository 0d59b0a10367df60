package chat

import (
	"context"
	"fmt"
	"log/slog"

	"quarry/internal/domain"
	chatRepo "quarry/internal/domain/repositories/chat"
)

// MessageLifecycle owns the redo operation: soft-deleting a message and
// everything chronologically after it within the same chat.
type MessageLifecycle struct {
	messageRepo chatRepo.MessageRepository
	logger      *slog.Logger
}

// NewMessageLifecycle creates a message lifecycle service.
func NewMessageLifecycle(messageRepo chatRepo.MessageRepository, logger *slog.Logger) *MessageLifecycle {
	return &MessageLifecycle{
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// SoftDeleteFrom verifies the target message belongs to chatID, then
// marks the target and every later non-deleted message in the chat as
// deleted. Idempotent: a second call with the same target matches no
// rows.
func (l *MessageLifecycle) SoftDeleteFrom(ctx context.Context, chatID, messageID string) error {
	target, err := l.messageRepo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if target.ChatID != chatID {
		return &domain.ValidationError{
			Message: fmt.Sprintf("message %s does not belong to chat %s", messageID, chatID),
		}
	}

	if err := l.messageRepo.SoftDeleteMessagesFrom(ctx, messageID); err != nil {
		return err
	}

	l.logger.Info("messages soft-deleted from point",
		"chat_id", chatID,
		"message_id", messageID,
	)

	return nil
}
