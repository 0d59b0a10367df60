package assets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"quarry/internal/domain"
	chatModels "quarry/internal/domain/models/chat"
	assetsRepo "quarry/internal/domain/repositories/assets"
	"quarry/internal/repository/postgres"
)

// PostgresAssetRepository resolves metric and dashboard assets from
// their type-specific tables.
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAssetRepository creates a new PostgresAssetRepository
func NewAssetRepository(config *postgres.RepositoryConfig) assetsRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetAsset retrieves an importable asset by id and type
func (r *PostgresAssetRepository) GetAsset(ctx context.Context, assetID string, assetType chatModels.AssetType) (*assetsRepo.Asset, error) {
	var table string
	switch assetType {
	case chatModels.AssetTypeMetric:
		table = r.tables.MetricAssets
	case chatModels.AssetTypeDashboard:
		table = r.tables.DashboardAssets
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown asset type %q", assetType)}
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, content, organization_id, created_by,
		       version_number, created_at, updated_at
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, table)

	var asset assetsRepo.Asset
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, assetID).Scan(
		&asset.ID,
		&asset.Name,
		&asset.Description,
		&asset.Content,
		&asset.OrganizationID,
		&asset.CreatedBy,
		&asset.VersionNumber,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("%s %s not found", assetType, assetID)}
		}
		return nil, fmt.Errorf("get %s asset: %w", assetType, err)
	}

	asset.Type = assetType
	return &asset, nil
}
