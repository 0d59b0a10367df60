package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quarry/internal/assets"
	"quarry/internal/domain"
	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
	"quarry/internal/domain/repositories"
	chatRepo "quarry/internal/domain/repositories/chat"
	"quarry/internal/service/sharing"
	"quarry/internal/tasks"
)

// In-memory fakes shared by the service tests. Each fake records the
// calls it receives so tests can assert ordering and arguments.

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[string]*chatModels.Chat
	users map[string]*identityModels.User

	createErr   error
	assetErr    error
	titleErr    error
	calls       []string
	lastAsset   *chatModels.AssetUpdate
	updatedName string
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats: make(map[string]*chatModels.Chat),
		users: make(map[string]*identityModels.User),
	}
}

func (f *fakeChatRepo) snapshotState() map[string]*chatModels.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := make(map[string]*chatModels.Chat, len(f.chats))
	for id, chat := range f.chats {
		copied := *chat
		state[id] = &copied
	}
	return state
}

func (f *fakeChatRepo) restoreState(state map[string]*chatModels.Chat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = state
}

func (f *fakeChatRepo) CreateChat(ctx context.Context, chat *chatModels.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateChat")
	if f.createErr != nil {
		return f.createErr
	}
	copied := *chat
	f.chats[chat.ID] = &copied
	return nil
}

func (f *fakeChatRepo) GetChat(ctx context.Context, chatID string) (*chatModels.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", chatID)}
	}
	copied := *chat
	return &copied, nil
}

func (f *fakeChatRepo) GetChatWithCreator(ctx context.Context, chatID, userID string) (*chatRepo.ChatWithCreator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", chatID)}
	}
	result := &chatRepo.ChatWithCreator{Chat: *chat}
	if creator, ok := f.users[chat.CreatedBy]; ok {
		result.Creator = *creator
	}
	return result, nil
}

func (f *fakeChatRepo) UpdateChatAsset(ctx context.Context, update *chatModels.AssetUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "UpdateChatAsset")
	if f.assetErr != nil {
		return f.assetErr
	}
	f.lastAsset = update
	if chat, ok := f.chats[update.ChatID]; ok {
		chat.Title = update.Title
		chat.MostRecentFileID = &update.FileID
		chat.MostRecentFileType = &update.FileType
		chat.MostRecentVersionNumber = &update.VersionNumber
	}
	return nil
}

func (f *fakeChatRepo) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "UpdateChatTitle")
	if f.titleErr != nil {
		return f.titleErr
	}
	if chat, ok := f.chats[chatID]; ok {
		chat.Title = title
	}
	f.updatedName = title
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []chatModels.Message

	createErr error
	listErr   error
	updateErr error
	calls     []string
	updates   map[string]*chatModels.MessageUpdate
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{updates: make(map[string]*chatModels.MessageUpdate)}
}

func (f *fakeMessageRepo) snapshotState() []chatModels.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := make([]chatModels.Message, len(f.messages))
	copy(state, f.messages)
	return state
}

func (f *fakeMessageRepo) restoreState(state []chatModels.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = state
}

func (f *fakeMessageRepo) CreateMessage(ctx context.Context, message *chatModels.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateMessage:"+message.ID)
	if f.createErr != nil {
		return f.createErr
	}
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageRepo) GetMessage(ctx context.Context, messageID string) (*chatModels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			copied := f.messages[i]
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("message %s not found", messageID)}
}

// ListMessages returns non-deleted messages newest-first, mirroring the
// postgres ORDER BY created_at DESC.
func (f *fakeMessageRepo) ListMessages(ctx context.Context, chatID string) ([]chatModels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ListMessages")
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []chatModels.Message
	for i := len(f.messages) - 1; i >= 0; i-- {
		message := f.messages[i]
		if message.ChatID != chatID || message.DeletedAt != nil {
			continue
		}
		result = append(result, message)
	}
	return result, nil
}

func (f *fakeMessageRepo) SoftDeleteMessagesFrom(ctx context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "SoftDeleteMessagesFrom:"+messageID)

	// Mirrors the set-based UPDATE: an unknown id matches no rows.
	var target *chatModels.Message
	for i := range f.messages {
		if f.messages[i].ID == messageID {
			target = &f.messages[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	now := time.Now()
	for i := range f.messages {
		message := &f.messages[i]
		if message.ChatID != target.ChatID || message.DeletedAt != nil {
			continue
		}
		if !message.CreatedAt.Before(target.CreatedAt) {
			message.DeletedAt = &now
		}
	}
	return nil
}

func (f *fakeMessageRepo) UpdateMessage(ctx context.Context, messageID string, update *chatModels.MessageUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "UpdateMessage:"+messageID)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[messageID] = update
	for i := range f.messages {
		if f.messages[i].ID != messageID {
			continue
		}
		if update.TriggerRunID != nil {
			f.messages[i].TriggerRunID = update.TriggerRunID
		}
		if update.IsCompleted != nil {
			f.messages[i].IsCompleted = *update.IsCompleted
		}
		if update.Feedback != nil {
			f.messages[i].Feedback = update.Feedback
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]*identityModels.User
	orgs  map[string]string
	err   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*identityModels.User),
		orgs:  make(map[string]string),
	}
}

func (f *fakeUserRepo) GetUser(ctx context.Context, userID string) (*identityModels.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[userID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", userID)}
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserOrganization(ctx context.Context, userID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.orgs[userID], nil
}

type fakeShortcutRecorder struct {
	mu       sync.Mutex
	recorded [][]string
	err      error
}

func (f *fakeShortcutRecorder) RecordLastUsed(ctx context.Context, userID string, shortcutIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, shortcutIDs)
	return f.err
}

type fakeAccessChecker struct {
	allow bool
	err   error
	asked []sharing.CheckParams
}

func (f *fakeAccessChecker) Check(ctx context.Context, params sharing.CheckParams) (*sharing.Access, error) {
	f.asked = append(f.asked, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sharing.Access{HasAccess: f.allow, EffectiveRole: sharing.RoleOwner}, nil
}

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []tasks.Task
	handle    *tasks.Handle
	err       error
}

func (f *fakeSubmitter) Submit(ctx context.Context, task tasks.Task) (*tasks.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, task)
	if f.err != nil {
		return nil, f.err
	}
	if f.handle != nil {
		return f.handle, nil
	}
	return &tasks.Handle{ID: "run-" + task.ConcurrencyKey}, nil
}

type fakeGenerator struct {
	generated []chatModels.Message
	err       error
	params    []assets.GenerateParams
}

func (f *fakeGenerator) Generate(ctx context.Context, params assets.GenerateParams) ([]chatModels.Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.generated, nil
}

// fakeTxManager mimics transaction semantics over the fakes: repo
// state is snapshotted before the function runs and restored when it
// fails, so tests can assert that a failed transaction left no rows.
type fakeTxManager struct {
	chats     *fakeChatRepo
	messages  *fakeMessageRepo
	execCount int
}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.execCount++
	chatState := f.chats.snapshotState()
	messageState := f.messages.snapshotState()
	if err := fn(ctx); err != nil {
		f.chats.restoreState(chatState)
		f.messages.restoreState(messageState)
		return err
	}
	return nil
}
