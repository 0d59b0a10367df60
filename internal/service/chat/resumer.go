package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"quarry/internal/domain"
	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
	chatRepo "quarry/internal/domain/repositories/chat"
	"quarry/internal/service/sharing"
)

// ExistingChatResumer appends a message to an existing chat, optionally
// discarding part of its history first (redo).
type ExistingChatResumer struct {
	chatRepo      chatRepo.ChatRepository
	messageRepo   chatRepo.MessageRepository
	accessChecker sharing.AccessChecker
	lifecycle     *MessageLifecycle
	logger        *slog.Logger
}

// NewExistingChatResumer creates an ExistingChatResumer.
func NewExistingChatResumer(
	chats chatRepo.ChatRepository,
	messages chatRepo.MessageRepository,
	accessChecker sharing.AccessChecker,
	lifecycle *MessageLifecycle,
	logger *slog.Logger,
) *ExistingChatResumer {
	return &ExistingChatResumer{
		chatRepo:      chats,
		messageRepo:   messages,
		accessChecker: accessChecker,
		lifecycle:     lifecycle,
		logger:        logger,
	}
}

// Resume permission-gates the chat, runs the redo soft delete when
// requested, then creates the new message and fetches the remaining
// history concurrently. The redo must finish before the fan-out so no
// reader ever sees a mix of discarded and fresh messages.
func (r *ExistingChatResumer) Resume(
	ctx context.Context,
	chatID, messageID string,
	prompt *string,
	user *identityModels.User,
	redoFromMessageID *string,
) (*chatModels.ChatSnapshot, error) {
	withCreator, err := r.chatRepo.GetChatWithCreator(ctx, chatID, user.ID)
	if err != nil {
		return nil, err
	}

	access, err := r.accessChecker.Check(ctx, sharing.CheckParams{
		UserID:       user.ID,
		AssetID:      chatID,
		AssetType:    "chat",
		RequiredRole: sharing.RoleCanView,
	})
	if err != nil {
		return nil, fmt.Errorf("check chat access: %w", err)
	}
	if !access.HasAccess {
		return nil, &domain.ForbiddenError{
			Message: fmt.Sprintf("user %s cannot access chat %s", user.ID, chatID),
		}
	}

	// Hard barrier: the soft delete completes before the new message
	// is created or the remaining list is fetched.
	if redoFromMessageID != nil {
		if err := r.lifecycle.SoftDeleteFrom(ctx, chatID, *redoFromMessageID); err != nil {
			return nil, err
		}
	}

	var newMessage *chatModels.Message
	if prompt != nil {
		now := time.Now()
		newMessage = &chatModels.Message{
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

	// The insert and the history fetch have no ordering dependency.
	var existing []chatModels.Message
	group, groupCtx := errgroup.WithContext(ctx)
	if newMessage != nil {
		group.Go(func() error {
			return r.messageRepo.CreateMessage(groupCtx, newMessage)
		})
	}
	group.Go(func() error {
		messages, err := r.messageRepo.ListMessages(groupCtx, chatID)
		if err != nil {
			return err
		}
		existing = messages
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// The new message is the most recent turn; prepend it to the
	// newest-first list. The concurrent fetch may or may not have seen
	// the insert, so drop any duplicate.
	merged := existing
	if newMessage != nil {
		merged = make([]chatModels.Message, 0, len(existing)+1)
		merged = append(merged, *newMessage)
		for _, message := range existing {
			if message.ID == newMessage.ID {
				continue
			}
			merged = append(merged, message)
		}
	}

	r.logger.Debug("chat resumed",
		"chat_id", chatID,
		"user_id", user.ID,
		"new_message", newMessage != nil,
		"redo", redoFromMessageID != nil,
		"history_len", len(existing),
	)

	return BuildSnapshot(&withCreator.Chat, merged, &withCreator.Creator, withCreator.IsFavorited), nil
}
