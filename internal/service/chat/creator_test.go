package chat

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	identityModels "quarry/internal/domain/models/identity"
)

func newCreatorFixture() (*NewChatCreator, *fakeChatRepo, *fakeMessageRepo, *fakeTxManager) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	chats := newFakeChatRepo()
	messages := newFakeMessageRepo()
	tx := &fakeTxManager{chats: chats, messages: messages}
	creator := NewChatCreatorService(chats, messages, tx, logger)
	return creator, chats, messages, tx
}

func TestCreate_WithPrompt(t *testing.T) {
	creator, chats, messages, tx := newCreatorFixture()
	user := &identityModels.User{ID: "user-1", Email: "ana@example.com"}

	prompt := "show revenue"
	snapshot, err := creator.Create(context.Background(), "chat-1", "msg-1", prompt, &prompt, user, "org-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if tx.execCount != 1 {
		t.Errorf("expected 1 transaction, got %d", tx.execCount)
	}
	if _, ok := chats.chats["chat-1"]; !ok {
		t.Error("chat row missing")
	}
	if len(messages.messages) != 1 || messages.messages[0].ID != "msg-1" {
		t.Errorf("messages = %v", messages.messages)
	}
	if len(snapshot.MessageIDs) != 1 || snapshot.MessageIDs[0] != "msg-1" {
		t.Errorf("MessageIDs = %v", snapshot.MessageIDs)
	}
	if snapshot.Title != "show revenue" {
		t.Errorf("title = %q", snapshot.Title)
	}
}

func TestCreate_WithoutPrompt(t *testing.T) {
	creator, _, messages, _ := newCreatorFixture()
	user := &identityModels.User{ID: "user-1"}

	snapshot, err := creator.Create(context.Background(), "chat-1", "msg-1", "New Chat", nil, user, "org-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(messages.messages) != 0 {
		t.Errorf("no message expected, got %v", messages.messages)
	}
	if len(snapshot.MessageIDs) != 0 {
		t.Errorf("MessageIDs = %v, want empty", snapshot.MessageIDs)
	}
	if snapshot.Title != "New Chat" {
		t.Errorf("title = %q", snapshot.Title)
	}
}

func TestCreate_MessageFailureRollsBackChat(t *testing.T) {
	creator, chats, messages, tx := newCreatorFixture()
	user := &identityModels.User{ID: "user-1"}
	messages.createErr = errors.New("unique violation")

	prompt := "hello"
	_, err := creator.Create(context.Background(), "chat-1", "msg-1", prompt, &prompt, user, "org-1")
	if err == nil {
		t.Fatal("expected the transaction error to surface")
	}
	if tx.execCount != 1 {
		t.Errorf("expected 1 transaction attempt, got %d", tx.execCount)
	}

	// The chat insert succeeded inside the transaction, so a
	// partially created chat must not survive the rollback.
	if len(chats.chats) != 0 {
		t.Errorf("expected no chat rows after rollback, got %d", len(chats.chats))
	}
	if len(messages.messages) != 0 {
		t.Errorf("expected no message rows after rollback, got %d", len(messages.messages))
	}
}
