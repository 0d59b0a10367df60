package chat

import (
	"encoding/json"
	"sort"

	chatModels "quarry/internal/domain/models/chat"
	identityModels "quarry/internal/domain/models/identity"
)

// BuildSnapshot assembles the caller-facing chat projection from raw
// rows. Pure and deterministic: no I/O, no clock.
//
// messages arrive newest-first (storage order); the snapshot's
// MessageIDs list is oldest-first, deduplicated defensively since ids
// must already be unique.
func BuildSnapshot(chat *chatModels.Chat, messages []chatModels.Message, creator *identityModels.User, isFavorited bool) *chatModels.ChatSnapshot {
	snapshot := &chatModels.ChatSnapshot{
		ID:                      chat.ID,
		Title:                   chat.Title,
		IsFavorited:             isFavorited,
		MessageIDs:              []string{},
		Messages:                make(map[string]*chatModels.SnapshotMessage, len(messages)),
		CreatedAt:               chat.CreatedAt,
		UpdatedAt:               chat.UpdatedAt,
		CreatedBy:               chat.CreatedBy,
		PubliclyAccessible:      chat.PubliclyAccessible,
		PublicExpiryDate:        chat.PublicExpiryDate,
		MostRecentFileID:        chat.MostRecentFileID,
		MostRecentFileType:      chat.MostRecentFileType,
		MostRecentVersionNumber: chat.MostRecentVersionNumber,
	}

	if creator != nil {
		snapshot.CreatedByID = creator.ID
		snapshot.CreatedByAvatar = creator.AvatarURL
	}
	snapshot.CreatedByName = creator.DisplayName()

	descendingIDs := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	for i := range messages {
		message := &messages[i]
		if seen[message.ID] {
			continue
		}
		seen[message.ID] = true
		descendingIDs = append(descendingIDs, message.ID)
		snapshot.Messages[message.ID] = ToSnapshotMessage(message)
	}

	// Storage and resumer logic run newest-first; callers read
	// oldest-first.
	snapshot.MessageIDs = reverseIDs(descendingIDs)

	return snapshot
}

// ToSnapshotMessage hydrates one message row, normalizing its stored
// response and reasoning payloads into canonical id-keyed maps. The id
// lists come from the canonical maps, never from the raw input, so
// list and map cannot disagree.
func ToSnapshotMessage(message *chatModels.Message) *chatModels.SnapshotMessage {
	responses, responseIDs := NormalizeItems(message.ResponseMessages)
	reasoning, reasoningIDs := NormalizeItems(message.ReasoningMessages)

	return &chatModels.SnapshotMessage{
		ID:                    message.ID,
		RequestMessage:        message.RequestMessage,
		ResponseMessages:      responses,
		ResponseMessageIDs:    responseIDs,
		ReasoningMessages:     reasoning,
		ReasoningMessageIDs:   reasoningIDs,
		FinalReasoningMessage: message.FinalReasoningMessage,
		IsCompleted:           message.IsCompleted,
		Feedback:              message.Feedback,
		PostProcessingMessage: message.PostProcessingMessage,
		CreatedAt:             message.CreatedAt,
		UpdatedAt:             message.UpdatedAt,
	}
}

// NormalizeItems coerces a stored response/reasoning payload into an
// id-keyed map plus the order its keys entered the map. Two shapes
// exist in storage: the current array-of-objects-with-id and a legacy
// id-keyed map. Anything else, including string-encoded or unparseable
// payloads, degrades to an empty map so a single bad row never fails a
// whole snapshot.
func NormalizeItems(raw any) (map[string]map[string]any, []string) {
	switch value := raw.(type) {
	case nil:
		return map[string]map[string]any{}, []string{}

	case []any:
		result := make(map[string]map[string]any, len(value))
		order := make([]string, 0, len(value))
		for _, entry := range value {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id, ok := item["id"].(string)
			if !ok || id == "" {
				continue
			}
			if _, exists := result[id]; !exists {
				order = append(order, id)
			}
			result[id] = item
		}
		return result, order

	case map[string]any:
		// Legacy shape: already keyed by id. Maps carry no order, so
		// sort for a stable output.
		result := make(map[string]map[string]any, len(value))
		for id, entry := range value {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			result[id] = item
		}
		return result, sortedKeys(result)

	case map[string]map[string]any:
		return value, sortedKeys(value)

	case string:
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return map[string]map[string]any{}, []string{}
		}
		// Guard against a string that decodes to another string.
		if _, again := decoded.(string); again {
			return map[string]map[string]any{}, []string{}
		}
		return NormalizeItems(decoded)

	case []byte:
		return NormalizeItems(string(value))

	default:
		return map[string]map[string]any{}, []string{}
	}
}

func sortedKeys(items map[string]map[string]any) []string {
	keys := make([]string, 0, len(items))
	for id := range items {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

func reverseIDs(ids []string) []string {
	reversed := make([]string, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	return reversed
}
