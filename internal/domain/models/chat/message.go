package chat

import (
	"time"
)

// Message represents one turn in a chat. Import messages carry response
// content and no request text; prompt messages start with request text
// and empty response/reasoning collections that the analysis agent
// fills in asynchronously.
type Message struct {
	ID                    string         `json:"id" db:"id"`
	ChatID                string         `json:"chat_id" db:"chat_id"`
	CreatedBy             string         `json:"created_by" db:"created_by"`
	RequestMessage        *string        `json:"request_message,omitempty" db:"request_message"`
	ResponseMessages      any            `json:"response_messages" db:"response_messages"`
	ReasoningMessages     any            `json:"reasoning_messages" db:"reasoning_messages"`
	FinalReasoningMessage *string        `json:"final_reasoning_message,omitempty" db:"final_reasoning_message"`
	IsCompleted           bool           `json:"is_completed" db:"is_completed"`
	Feedback              *string        `json:"feedback,omitempty" db:"feedback"`
	PostProcessingMessage map[string]any `json:"post_processing_message,omitempty" db:"post_processing_message"`
	TriggerRunID          *string        `json:"trigger_run_id,omitempty" db:"trigger_run_id"`
	Title                 *string        `json:"title,omitempty" db:"title"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt             *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// MessageUpdate holds the optional fields of a message update. Nil
// fields are left untouched.
type MessageUpdate struct {
	TriggerRunID *string
	IsCompleted  *bool
	Feedback     *string
}
