package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"quarry/internal/domain"
	identityModels "quarry/internal/domain/models/identity"
	identityRepo "quarry/internal/domain/repositories/identity"
	"quarry/internal/repository/postgres"
)

// PostgresUserRepository implements the UserRepository interface using PostgreSQL
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new PostgresUserRepository
func NewUserRepository(config *postgres.RepositoryConfig) identityRepo.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetUser retrieves a user by ID
func (r *PostgresUserRepository) GetUser(ctx context.Context, userID string) (*identityModels.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, avatar_url, organization_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Users)

	var user identityModels.User
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.AvatarURL,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %s not found", userID)}
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetUserOrganization returns the user's organization id, or "" when
// the user has none
func (r *PostgresUserRepository) GetUserOrganization(ctx context.Context, userID string) (string, error) {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.OrganizationID == nil {
		return "", nil
	}
	return *user.OrganizationID, nil
}
