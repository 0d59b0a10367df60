package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"quarry/internal/domain"
	chatModels "quarry/internal/domain/models/chat"
	chatRepo "quarry/internal/domain/repositories/chat"
	"quarry/internal/repository/postgres"
)

// PostgresMessageRepository implements the MessageRepository interface using PostgreSQL
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewMessageRepository creates a new PostgresMessageRepository
func NewMessageRepository(config *postgres.RepositoryConfig) chatRepo.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const messageColumns = `id, chat_id, created_by, request_message, response_messages,
	reasoning_messages, final_reasoning_message, is_completed, feedback,
	post_processing_message, trigger_run_id, title, created_at, updated_at, deleted_at`

// CreateMessage inserts a message row
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, message *chatModels.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, chat_id, created_by, request_message, response_messages,
			reasoning_messages, final_reasoning_message, is_completed, feedback,
			post_processing_message, trigger_run_id, title, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		message.ID,
		message.ChatID,
		message.CreatedBy,
		message.RequestMessage,
		message.ResponseMessages,      // pgx encodes to JSONB (nil becomes NULL)
		message.ReasoningMessages,     // pgx encodes to JSONB (nil becomes NULL)
		message.FinalReasoningMessage,
		message.IsCompleted,
		message.Feedback,
		message.PostProcessingMessage,
		message.TriggerRunID,
		message.Title,
		message.CreatedAt,
		message.UpdatedAt,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", message.ChatID)}
		}
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("message %s: %w", message.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// GetMessage retrieves a single message, deleted or not
func (r *PostgresMessageRepository) GetMessage(ctx context.Context, messageID string) (*chatModels.Message, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, messageColumns, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	row := executor.QueryRow(ctx, query, messageID)

	message, err := scanMessage(row)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("message %s not found", messageID)}
		}
		return nil, fmt.Errorf("get message: %w", err)
	}

	return message, nil
}

// ListMessages returns the non-deleted messages of a chat, newest-first
func (r *PostgresMessageRepository) ListMessages(ctx context.Context, chatID string) ([]chatModels.Message, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE chat_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`, messageColumns, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []chatModels.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}

// SoftDeleteMessagesFrom marks as deleted the target message and every
// not-yet-deleted message in the same chat created at or after it.
// The set-based UPDATE makes the operation idempotent: already-deleted
// rows are excluded by the deleted_at IS NULL predicate. Callers
// resolve the target first; an unknown id matches no rows here.
func (r *PostgresMessageRepository) SoftDeleteMessagesFrom(ctx context.Context, messageID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $2, updated_at = $2
		WHERE chat_id = (SELECT chat_id FROM %s WHERE id = $1)
		  AND created_at >= (SELECT created_at FROM %s WHERE id = $1)
		  AND deleted_at IS NULL
	`, r.tables.Messages, r.tables.Messages, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, messageID, time.Now()); err != nil {
		return fmt.Errorf("soft delete messages: %w", err)
	}

	return nil
}

// UpdateMessage applies the non-nil fields of update to a message
func (r *PostgresMessageRepository) UpdateMessage(ctx context.Context, messageID string, update *chatModels.MessageUpdate) error {
	setClauses := "updated_at = $2"
	args := []interface{}{messageID, time.Now()}

	if update.TriggerRunID != nil {
		args = append(args, *update.TriggerRunID)
		setClauses += fmt.Sprintf(", trigger_run_id = $%d", len(args))
	}
	if update.IsCompleted != nil {
		args = append(args, *update.IsCompleted)
		setClauses += fmt.Sprintf(", is_completed = $%d", len(args))
	}
	if update.Feedback != nil {
		args = append(args, *update.Feedback)
		setClauses += fmt.Sprintf(", feedback = $%d", len(args))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, r.tables.Messages, setClauses)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("message %s not found", messageID)}
	}

	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (*chatModels.Message, error) {
	var message chatModels.Message
	err := row.Scan(
		&message.ID,
		&message.ChatID,
		&message.CreatedBy,
		&message.RequestMessage,
		&message.ResponseMessages,
		&message.ReasoningMessages,
		&message.FinalReasoningMessage,
		&message.IsCompleted,
		&message.Feedback,
		&message.PostProcessingMessage,
		&message.TriggerRunID,
		&message.Title,
		&message.CreatedAt,
		&message.UpdatedAt,
		&message.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}
