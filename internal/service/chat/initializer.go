package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quarry/internal/domain"
	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
	domainChat "quarry/internal/domain/services/chat"
)

// InitResult is what ChatInitializer hands back to the orchestrator.
type InitResult struct {
	ChatID    string
	MessageID string
	Chat      *chatModels.ChatSnapshot
}

// ChatInitializer decides between creating a fresh chat and resuming an
// existing one, and pins down the id of the initial message.
type ChatInitializer struct {
	creator *NewChatCreator
	resumer *ExistingChatResumer
}

// NewChatInitializer creates a ChatInitializer.
func NewChatInitializer(creator *NewChatCreator, resumer *ExistingChatResumer) *ChatInitializer {
	return &ChatInitializer{
		creator: creator,
		resumer: resumer,
	}
}

// Initialize resolves or creates the chat for a request. prompt is the
// initial message text; the orchestrator passes nil to suppress the
// eager message when the asset importer will create it instead. The
// caller-supplied message id doubles as the idempotency key for the
// first message; absent one, a fresh uuid is generated.
func (i *ChatInitializer) Initialize(
	ctx context.Context,
	req *domainChat.ChatRequest,
	prompt *string,
	user *identityModels.User,
	organizationID string,
) (*InitResult, error) {
	messageID := uuid.NewString()
	if req.MessageID != nil && *req.MessageID != "" {
		messageID = *req.MessageID
	}

	if req.ChatID != nil && *req.ChatID != "" {
		snapshot, err := i.resumer.Resume(ctx, *req.ChatID, messageID, prompt, user, req.RedoFromMessageID)
		if err != nil {
			return nil, wrapStorageError(err, "resume chat")
		}
		return &InitResult{ChatID: *req.ChatID, MessageID: messageID, Chat: snapshot}, nil
	}

	title := "New Chat"
	if req.Prompt != nil && *req.Prompt != "" {
		title = *req.Prompt
	}

	chatID := uuid.NewString()
	snapshot, err := i.creator.Create(ctx, chatID, messageID, title, prompt, user, organizationID)
	if err != nil {
		return nil, wrapStorageError(err, "create chat")
	}

	return &InitResult{ChatID: chatID, MessageID: messageID, Chat: snapshot}, nil
}

// wrapStorageError passes typed domain errors through unchanged and
// classifies everything else as a database failure.
func wrapStorageError(err error, operation string) error {
	if domain.IsDomainError(err) {
		return err
	}
	return &domain.DatabaseError{
		Message: fmt.Sprintf("%s failed", operation),
		Cause:   err,
	}
}
