package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quarry/internal/domain"
	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
	chatRepo "quarry/internal/domain/repositories/chat"
	identityRepo "quarry/internal/domain/repositories/identity"
	domainChat "quarry/internal/domain/services/chat"
	"quarry/internal/service/sharing"
	"quarry/internal/tasks"
)

// syncBudget is the soft latency target for the synchronous part of
// chat creation. Breaching it emits a warning, never an error.
const syncBudget = 500 * time.Millisecond

// analysisTaskKey names the background workflow that produces the
// assistant response for a prompt message.
const analysisTaskKey = "chat-analysis"

// ChatOrchestrator is the entry point for create-or-resume requests:
// it validates the envelope, drives the initializer and importer, and
// hands analysis work to the background runtime.
type ChatOrchestrator struct {
	initializer      *ChatInitializer
	importer         *AssetImporter
	lifecycle        *MessageLifecycle
	chatRepo         chatRepo.ChatRepository
	messageRepo      chatRepo.MessageRepository
	userRepo         identityRepo.UserRepository
	shortcutRecorder identityRepo.ShortcutRecorder
	accessChecker    sharing.AccessChecker
	submitter        tasks.Submitter
	logger           *slog.Logger
}

// NewChatOrchestrator creates the orchestrator.
func NewChatOrchestrator(
	initializer *ChatInitializer,
	importer *AssetImporter,
	lifecycle *MessageLifecycle,
	chats chatRepo.ChatRepository,
	messages chatRepo.MessageRepository,
	users identityRepo.UserRepository,
	shortcutRecorder identityRepo.ShortcutRecorder,
	accessChecker sharing.AccessChecker,
	submitter tasks.Submitter,
	logger *slog.Logger,
) domainChat.ChatService {
	return &ChatOrchestrator{
		initializer:      initializer,
		importer:         importer,
		lifecycle:        lifecycle,
		chatRepo:         chats,
		messageRepo:      messages,
		userRepo:         users,
		shortcutRecorder: shortcutRecorder,
		accessChecker:    accessChecker,
		submitter:        submitter,
		logger:           logger,
	}
}

// CreateChat creates a new chat or resumes an existing one. Typed
// domain errors from collaborators pass through unchanged; anything
// else is wrapped as an internal error carrying the original message.
func (o *ChatOrchestrator) CreateChat(ctx context.Context, req *domainChat.ChatRequest, user *identityModels.User) (*chatModels.ChatSnapshot, error) {
	start := time.Now()

	snapshot, err := o.createChat(ctx, req, user)

	duration := time.Since(start)
	if duration > syncBudget {
		o.logger.Warn("chat creation exceeded latency budget",
			"duration_ms", duration.Milliseconds(),
			"budget_ms", syncBudget.Milliseconds(),
			"user_id", user.ID,
			"has_asset", req.HasAsset(),
			"has_prompt", req.HasPrompt(),
		)
	}

	if err != nil {
		if domain.IsDomainError(err) {
			return nil, err
		}
		o.logger.Error("chat creation failed",
			"user_id", user.ID,
			"duration_ms", duration.Milliseconds(),
			"has_asset", req.HasAsset(),
			"has_prompt", req.HasPrompt(),
			"error", err,
		)
		return nil, &domain.InternalError{
			Message: "chat creation failed",
			Detail:  err.Error(),
		}
	}

	return snapshot, nil
}

func (o *ChatOrchestrator) createChat(ctx context.Context, req *domainChat.ChatRequest, user *identityModels.User) (*chatModels.ChatSnapshot, error) {
	organizationID, err := o.userRepo.GetUserOrganization(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if organizationID == "" {
		return nil, &domain.MissingOrganizationError{UserID: user.ID}
	}

	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	// With both an asset and a prompt, the importer creates the import
	// and prompt messages itself in that order, so the eager initial
	// message is suppressed.
	prompt := normalizePrompt(req.Prompt)
	eagerPrompt := prompt
	if req.HasAsset() && prompt != nil {
		eagerPrompt = nil
	}

	result, err := o.initializer.Initialize(ctx, req, eagerPrompt, user, organizationID)
	if err != nil {
		return nil, err
	}
	snapshot := result.Chat

	// Best effort; a tracking failure never fails the request.
	if len(req.ShortcutIDs) > 0 {
		if err := o.shortcutRecorder.RecordLastUsed(ctx, user.ID, req.ShortcutIDs); err != nil {
			o.logger.Warn("shortcut usage recording failed",
				"user_id", user.ID,
				"shortcut_ids", req.ShortcutIDs,
				"error", err,
			)
		}
	}

	triggerMessageID := result.MessageID
	if req.HasAsset() {
		snapshot, err = o.importer.ImportAsset(ctx, result.ChatID, *req.AssetID, *req.AssetType, user, snapshot, prompt)
		if err != nil {
			return nil, err
		}
		if prompt == nil {
			// Import-only chats never invoke the agent.
			return snapshot, nil
		}
		// The prompt message is the newest entry the importer appended.
		triggerMessageID = snapshot.LastMessageID()
	}

	if err := o.triggerAnalysis(ctx, result.ChatID, triggerMessageID, user.ID); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// triggerAnalysis submits the background analysis task keyed so runs
// for the same chat are serialized by the task runtime, then persists
// the run handle on the message for resumability.
func (o *ChatOrchestrator) triggerAnalysis(ctx context.Context, chatID, messageID, userID string) error {
	handle, err := o.submitter.Submit(ctx, tasks.Task{
		Key:            analysisTaskKey,
		ConcurrencyKey: chatID,
		Payload: map[string]any{
			"message_id": messageID,
			"chat_id":    chatID,
			"user_id":    userID,
		},
	})
	if err != nil {
		return &domain.InternalError{
			Message: "background task submission failed",
			Detail:  err.Error(),
		}
	}
	if handle == nil || handle.ID == "" {
		return &domain.InternalError{
			Message: "background task submission failed",
			Detail:  "task runtime returned no run id",
		}
	}

	update := &chatModels.MessageUpdate{TriggerRunID: &handle.ID}
	if err := o.messageRepo.UpdateMessage(ctx, messageID, update); err != nil {
		// Without the handle the run cannot be resumed; surface it.
		return &domain.DatabaseError{
			Message: fmt.Sprintf("persist task handle on message %s", messageID),
			Cause:   err,
		}
	}

	return nil
}

// GetChatSnapshot assembles the snapshot of an existing chat.
func (o *ChatOrchestrator) GetChatSnapshot(ctx context.Context, chatID, userID string) (*chatModels.ChatSnapshot, error) {
	withCreator, err := o.chatRepo.GetChatWithCreator(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	if !publiclyReadable(&withCreator.Chat, time.Now()) {
		access, err := o.accessChecker.Check(ctx, sharing.CheckParams{
			UserID:       userID,
			AssetID:      chatID,
			AssetType:    "chat",
			RequiredRole: sharing.RoleCanView,
		})
		if err != nil {
			return nil, fmt.Errorf("check chat access: %w", err)
		}
		if !access.HasAccess {
			return nil, &domain.ForbiddenError{
				Message: fmt.Sprintf("user %s cannot access chat %s", userID, chatID),
			}
		}
	}

	messages, err := o.messageRepo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, wrapStorageError(err, "list messages")
	}

	return BuildSnapshot(&withCreator.Chat, messages, &withCreator.Creator, withCreator.IsFavorited), nil
}

// RedoFromMessage soft-deletes a message and all later messages in the
// chat. Requires edit access.
func (o *ChatOrchestrator) RedoFromMessage(ctx context.Context, chatID, messageID, userID string) error {
	access, err := o.accessChecker.Check(ctx, sharing.CheckParams{
		UserID:       userID,
		AssetID:      chatID,
		AssetType:    "chat",
		RequiredRole: sharing.RoleCanEdit,
	})
	if err != nil {
		return fmt.Errorf("check chat access: %w", err)
	}
	if !access.HasAccess {
		return &domain.ForbiddenError{
			Message: fmt.Sprintf("user %s cannot edit chat %s", userID, chatID),
		}
	}

	return o.lifecycle.SoftDeleteFrom(ctx, chatID, messageID)
}

// UpdateChatTitle renames a chat. Requires edit access.
func (o *ChatOrchestrator) UpdateChatTitle(ctx context.Context, chatID, userID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &domain.ValidationError{Message: "title must not be empty"}
	}

	access, err := o.accessChecker.Check(ctx, sharing.CheckParams{
		UserID:       userID,
		AssetID:      chatID,
		AssetType:    "chat",
		RequiredRole: sharing.RoleCanEdit,
	})
	if err != nil {
		return fmt.Errorf("check chat access: %w", err)
	}
	if !access.HasAccess {
		return &domain.ForbiddenError{
			Message: fmt.Sprintf("user %s cannot edit chat %s", userID, chatID),
		}
	}

	if err := o.chatRepo.UpdateChatTitle(ctx, chatID, title); err != nil {
		return wrapStorageError(err, "update chat title")
	}

	o.logger.Info("chat renamed", "chat_id", chatID, "user_id", userID)
	return nil
}

// normalizePrompt treats an empty prompt as absent.
func normalizePrompt(prompt *string) *string {
	if prompt == nil || *prompt == "" {
		return nil
	}
	return prompt
}

// publiclyReadable reports whether a chat's public share is still active.
// A share with a past expiry date behaves as if sharing were never enabled.
func publiclyReadable(chat *chatModels.Chat, now time.Time) bool {
	if !chat.PubliclyAccessible {
		return false
	}
	return chat.PublicExpiryDate == nil || chat.PublicExpiryDate.After(now)
}
