package chat

import (
	"reflect"
	"testing"
	"time"

	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
)

func strPtr(s string) *string { return &s }

func TestNormalizeItems(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		wantIDs   []string
		wantItems map[string]map[string]any
	}{
		{
			name:      "nil payload",
			raw:       nil,
			wantIDs:   []string{},
			wantItems: map[string]map[string]any{},
		},
		{
			name: "array of objects keeps arrival order",
			raw: []any{
				map[string]any{"id": "b", "type": "text", "message": "second"},
				map[string]any{"id": "a", "type": "text", "message": "first"},
			},
			wantIDs: []string{"b", "a"},
			wantItems: map[string]map[string]any{
				"b": {"id": "b", "type": "text", "message": "second"},
				"a": {"id": "a", "type": "text", "message": "first"},
			},
		},
		{
			name: "array entries without ids are dropped",
			raw: []any{
				map[string]any{"type": "text", "message": "no id"},
				map[string]any{"id": "", "type": "text"},
				map[string]any{"id": "x", "type": "text"},
				"not an object",
			},
			wantIDs: []string{"x"},
			wantItems: map[string]map[string]any{
				"x": {"id": "x", "type": "text"},
			},
		},
		{
			name: "duplicate ids keep the last item, first position",
			raw: []any{
				map[string]any{"id": "a", "message": "old"},
				map[string]any{"id": "b", "message": "other"},
				map[string]any{"id": "a", "message": "new"},
			},
			wantIDs: []string{"a", "b"},
			wantItems: map[string]map[string]any{
				"a": {"id": "a", "message": "new"},
				"b": {"id": "b", "message": "other"},
			},
		},
		{
			name: "legacy id-keyed map sorts ids",
			raw: map[string]any{
				"z": map[string]any{"message": "last"},
				"a": map[string]any{"message": "first"},
			},
			wantIDs: []string{"a", "z"},
			wantItems: map[string]map[string]any{
				"z": {"message": "last"},
				"a": {"message": "first"},
			},
		},
		{
			name:    "string-encoded json array",
			raw:     `[{"id":"s1","type":"text"}]`,
			wantIDs: []string{"s1"},
			wantItems: map[string]map[string]any{
				"s1": {"id": "s1", "type": "text"},
			},
		},
		{
			name:      "unparseable string degrades to empty",
			raw:       "{not json",
			wantIDs:   []string{},
			wantItems: map[string]map[string]any{},
		},
		{
			name:      "string decoding to a string degrades to empty",
			raw:       `"just text"`,
			wantIDs:   []string{},
			wantItems: map[string]map[string]any{},
		},
		{
			name:    "byte slice payload",
			raw:     []byte(`[{"id":"b1"}]`),
			wantIDs: []string{"b1"},
			wantItems: map[string]map[string]any{
				"b1": {"id": "b1"},
			},
		},
		{
			name:      "unexpected scalar degrades to empty",
			raw:       42,
			wantIDs:   []string{},
			wantItems: map[string]map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, ids := NormalizeItems(tt.raw)
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if !reflect.DeepEqual(items, tt.wantItems) {
				t.Errorf("items = %v, want %v", items, tt.wantItems)
			}
		})
	}
}

func TestBuildSnapshot_OrderingAndDedupe(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := &chatModels.Chat{
		ID:        "chat-1",
		Title:     "Revenue deep dive",
		CreatedBy: "user-1",
		CreatedAt: base,
		UpdatedAt: base,
	}
	creator := &identityModels.User{ID: "user-1", Email: "ana@example.com", Name: strPtr("Ana")}

	// Newest-first input, with message "m2" appearing twice.
	messages := []chatModels.Message{
		{ID: "m3", ChatID: "chat-1", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "m2", ChatID: "chat-1", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m2", ChatID: "chat-1", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m1", ChatID: "chat-1", CreatedAt: base.Add(1 * time.Minute)},
	}

	snapshot := BuildSnapshot(chat, messages, creator, true)

	wantOrder := []string{"m1", "m2", "m3"}
	if !reflect.DeepEqual(snapshot.MessageIDs, wantOrder) {
		t.Errorf("MessageIDs = %v, want %v", snapshot.MessageIDs, wantOrder)
	}
	if len(snapshot.Messages) != 3 {
		t.Errorf("expected 3 messages in map, got %d", len(snapshot.Messages))
	}
	for _, id := range wantOrder {
		if snapshot.Messages[id] == nil {
			t.Errorf("message %s missing from map", id)
		}
	}
	if snapshot.LastMessageID() != "m3" {
		t.Errorf("LastMessageID = %q, want m3", snapshot.LastMessageID())
	}
	if !snapshot.IsFavorited {
		t.Error("expected IsFavorited to carry through")
	}
	if snapshot.CreatedByName != "Ana" {
		t.Errorf("CreatedByName = %q, want Ana", snapshot.CreatedByName)
	}
	if snapshot.CreatedByID != "user-1" {
		t.Errorf("CreatedByID = %q, want user-1", snapshot.CreatedByID)
	}
}

func TestBuildSnapshot_EmptyChat(t *testing.T) {
	chat := &chatModels.Chat{ID: "chat-1", Title: "New Chat", CreatedBy: "user-1"}

	snapshot := BuildSnapshot(chat, nil, nil, false)

	if snapshot.MessageIDs == nil || len(snapshot.MessageIDs) != 0 {
		t.Errorf("MessageIDs = %v, want empty non-nil slice", snapshot.MessageIDs)
	}
	if snapshot.LastMessageID() != "" {
		t.Errorf("LastMessageID = %q, want empty", snapshot.LastMessageID())
	}
	if snapshot.CreatedByName != "Unknown User" {
		t.Errorf("CreatedByName = %q, want Unknown User", snapshot.CreatedByName)
	}
}

func TestBuildSnapshot_CreatorNameFallback(t *testing.T) {
	chat := &chatModels.Chat{ID: "chat-1", CreatedBy: "user-1"}

	tests := []struct {
		name    string
		creator *identityModels.User
		want    string
	}{
		{"name wins", &identityModels.User{ID: "u", Email: "e@x.com", Name: strPtr("Full Name")}, "Full Name"},
		{"email fallback", &identityModels.User{ID: "u", Email: "e@x.com"}, "e@x.com"},
		{"empty name falls back to email", &identityModels.User{ID: "u", Email: "e@x.com", Name: strPtr("")}, "e@x.com"},
		{"nothing known", &identityModels.User{ID: "u"}, "Unknown User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := BuildSnapshot(chat, nil, tt.creator, false)
			if snapshot.CreatedByName != tt.want {
				t.Errorf("CreatedByName = %q, want %q", snapshot.CreatedByName, tt.want)
			}
		})
	}
}

func TestToSnapshotMessage_ListsMatchMaps(t *testing.T) {
	message := &chatModels.Message{
		ID:             "m1",
		RequestMessage: strPtr("show revenue"),
		ResponseMessages: []any{
			map[string]any{"id": "r1", "type": "text"},
			map[string]any{"id": "r2", "type": "file"},
		},
		ReasoningMessages: `{"k1":{"text":"thinking"}}`,
		IsCompleted:       true,
	}

	snap := ToSnapshotMessage(message)

	if !reflect.DeepEqual(snap.ResponseMessageIDs, []string{"r1", "r2"}) {
		t.Errorf("ResponseMessageIDs = %v", snap.ResponseMessageIDs)
	}
	for _, id := range snap.ResponseMessageIDs {
		if _, ok := snap.ResponseMessages[id]; !ok {
			t.Errorf("response id %s has no map entry", id)
		}
	}
	if !reflect.DeepEqual(snap.ReasoningMessageIDs, []string{"k1"}) {
		t.Errorf("ReasoningMessageIDs = %v", snap.ReasoningMessageIDs)
	}
	if !snap.IsCompleted {
		t.Error("expected IsCompleted to carry through")
	}
}
