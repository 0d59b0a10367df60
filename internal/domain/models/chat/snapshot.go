package chat

import (
	"time"
)

// SnapshotMessage is the hydrated, UI-ready projection of a message.
// Response and reasoning payloads are normalized into id-keyed maps
// with matching id lists, whatever shape storage returned them in.
type SnapshotMessage struct {
	ID                    string                    `json:"id"`
	RequestMessage        *string                   `json:"request_message"`
	ResponseMessages      map[string]map[string]any `json:"response_messages"`
	ResponseMessageIDs    []string                  `json:"response_message_ids"`
	ReasoningMessages     map[string]map[string]any `json:"reasoning_messages"`
	ReasoningMessageIDs   []string                  `json:"reasoning_message_ids"`
	FinalReasoningMessage *string                   `json:"final_reasoning_message"`
	IsCompleted           bool                      `json:"is_completed"`
	Feedback              *string                   `json:"feedback"`
	PostProcessingMessage map[string]any            `json:"post_processing_message,omitempty"`
	CreatedAt             time.Time                 `json:"created_at"`
	UpdatedAt             time.Time                 `json:"updated_at"`
}

// ChatSnapshot is the read model returned to callers. It is assembled
// fresh per request and never persisted; the asset importer mutates it
// in place before it is returned.
type ChatSnapshot struct {
	ID                      string                      `json:"id"`
	Title                   string                      `json:"title"`
	IsFavorited             bool                        `json:"is_favorited"`
	MessageIDs              []string                    `json:"message_ids"`
	Messages                map[string]*SnapshotMessage `json:"messages"`
	CreatedAt               time.Time                   `json:"created_at"`
	UpdatedAt               time.Time                   `json:"updated_at"`
	CreatedBy               string                      `json:"created_by"`
	CreatedByID             string                      `json:"created_by_id"`
	CreatedByName           string                      `json:"created_by_name"`
	CreatedByAvatar         *string                     `json:"created_by_avatar"`
	PubliclyAccessible      bool                        `json:"publicly_accessible"`
	PublicExpiryDate        *time.Time                  `json:"public_expiry_date,omitempty"`
	MostRecentFileID        *string                     `json:"most_recent_file_id,omitempty"`
	MostRecentFileType      *AssetType                  `json:"most_recent_file_type,omitempty"`
	MostRecentVersionNumber *int                        `json:"most_recent_version_number,omitempty"`
}

// LastMessageID returns the newest message id in the snapshot's
// ascending ordering, or "" when the chat has no messages.
func (s *ChatSnapshot) LastMessageID() string {
	if len(s.MessageIDs) == 0 {
		return ""
	}
	return s.MessageIDs[len(s.MessageIDs)-1]
}
