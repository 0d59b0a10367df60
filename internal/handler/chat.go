package handler

import (
	"log/slog"
	"net/http"

	identityRepo "quarry/internal/domain/repositories/identity"
	domainChat "quarry/internal/domain/services/chat"
	"quarry/internal/httputil"
)

// ChatHandler handles chat HTTP requests.
// Handlers only talk to services, never repositories; the user
// repository here is read-only identity resolution for the
// authenticated caller.
type ChatHandler struct {
	chatService domainChat.ChatService
	userRepo    identityRepo.UserRepository
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService domainChat.ChatService, userRepo identityRepo.UserRepository, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// CreateChat creates a new chat or resumes an existing one
// POST /api/chats
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req domainChat.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userRepo.GetUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	snapshot, err := h.chatService.CreateChat(r.Context(), &req, user)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snapshot)
}

// GetChat retrieves the snapshot of a single chat
// GET /api/chats/{id}
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	snapshot, err := h.chatService.GetChatSnapshot(r.Context(), chatID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, snapshot)
}

// UpdateChat renames a chat
// PATCH /api/chats/{id}
func (h *ChatHandler) UpdateChat(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	var req domainChat.UpdateChatTitleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.chatService.UpdateChatTitle(r.Context(), chatID, userID, req.Title); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RedoFromMessage soft-deletes a message and everything after it
// DELETE /api/chats/{id}/messages/{message_id}
func (h *ChatHandler) RedoFromMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := PathParam(w, r, "id", "Chat ID")
	if !ok {
		return
	}
	messageID, ok := PathParam(w, r, "message_id", "Message ID")
	if !ok {
		return
	}

	userID := httputil.GetUserID(r)
	if err := h.chatService.RedoFromMessage(r.Context(), chatID, messageID, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck reports liveness
// GET /healthz
func (h *ChatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
