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

// PostgresChatRepository implements the ChatRepository interface using PostgreSQL
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewChatRepository creates a new PostgresChatRepository
func NewChatRepository(config *postgres.RepositoryConfig) chatRepo.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateChat inserts a new chat row
func (r *PostgresChatRepository) CreateChat(ctx context.Context, chat *chatModels.Chat) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, organization_id, created_by, publicly_accessible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		chat.ID,
		chat.Title,
		chat.OrganizationID,
		chat.CreatedBy,
		chat.PubliclyAccessible,
		chat.CreatedAt,
		chat.UpdatedAt,
	).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create chat: %w", err)
	}

	return nil
}

// GetChat retrieves a chat by ID
func (r *PostgresChatRepository) GetChat(ctx context.Context, chatID string) (*chatModels.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, title, organization_id, created_by, publicly_accessible, public_expiry_date,
		       publicly_enabled_by, most_recent_file_id, most_recent_file_type,
		       most_recent_version_number, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Chats)

	var chat chatModels.Chat
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chatID).Scan(
		&chat.ID,
		&chat.Title,
		&chat.OrganizationID,
		&chat.CreatedBy,
		&chat.PubliclyAccessible,
		&chat.PublicExpiryDate,
		&chat.PubliclyEnabledBy,
		&chat.MostRecentFileID,
		&chat.MostRecentFileType,
		&chat.MostRecentVersionNumber,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", chatID)}
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}

	return &chat, nil
}

// GetChatWithCreator retrieves a chat with its creator row and the
// favorite flag for the given user
func (r *PostgresChatRepository) GetChatWithCreator(ctx context.Context, chatID, userID string) (*chatRepo.ChatWithCreator, error) {
	query := fmt.Sprintf(`
		SELECT c.id, c.title, c.organization_id, c.created_by, c.publicly_accessible,
		       c.public_expiry_date, c.publicly_enabled_by, c.most_recent_file_id,
		       c.most_recent_file_type, c.most_recent_version_number, c.created_at, c.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.organization_id, u.created_at, u.updated_at,
		       EXISTS(SELECT 1 FROM %s f WHERE f.asset_id = c.id AND f.asset_type = 'chat' AND f.user_id = $2) AS is_favorited
		FROM %s c
		JOIN %s u ON u.id = c.created_by
		WHERE c.id = $1
	`, r.tables.UserFavorites, r.tables.Chats, r.tables.Users)

	var result chatRepo.ChatWithCreator
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, chatID, userID).Scan(
		&result.Chat.ID,
		&result.Chat.Title,
		&result.Chat.OrganizationID,
		&result.Chat.CreatedBy,
		&result.Chat.PubliclyAccessible,
		&result.Chat.PublicExpiryDate,
		&result.Chat.PubliclyEnabledBy,
		&result.Chat.MostRecentFileID,
		&result.Chat.MostRecentFileType,
		&result.Chat.MostRecentVersionNumber,
		&result.Chat.CreatedAt,
		&result.Chat.UpdatedAt,
		&result.Creator.ID,
		&result.Creator.Email,
		&result.Creator.Name,
		&result.Creator.AvatarURL,
		&result.Creator.OrganizationID,
		&result.Creator.CreatedAt,
		&result.Creator.UpdatedAt,
		&result.IsFavorited,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", chatID)}
		}
		return nil, fmt.Errorf("get chat with creator: %w", err)
	}

	return &result, nil
}

// UpdateChatAsset applies the post-import chat mutation in one statement
func (r *PostgresChatRepository) UpdateChatAsset(ctx context.Context, update *chatModels.AssetUpdate) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2,
		    most_recent_file_id = $3,
		    most_recent_file_type = $4,
		    most_recent_version_number = $5,
		    updated_at = $6
		WHERE id = $1
	`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		update.ChatID,
		update.Title,
		update.FileID,
		string(update.FileType),
		update.VersionNumber,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update chat asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", update.ChatID)}
	}

	return nil
}

// UpdateChatTitle renames a chat
func (r *PostgresChatRepository) UpdateChatTitle(ctx context.Context, chatID, title string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET title = $2, updated_at = $3 WHERE id = $1
	`, r.tables.Chats)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, chatID, title, time.Now())
	if err != nil {
		return fmt.Errorf("update chat title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("chat %s not found", chatID)}
	}

	return nil
}
