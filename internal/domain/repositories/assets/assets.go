package assets

import (
	"context"
	"time"

	chatModels "quarry/internal/domain/models/chat"
)

// Asset is an importable analytics definition (a metric or dashboard)
// owned by an organization.
type Asset struct {
	ID             string               `json:"id" db:"id"`
	Name           string               `json:"name" db:"name"`
	Type           chatModels.AssetType `json:"type" db:"-"`
	Description    *string              `json:"description,omitempty" db:"description"`
	Content        map[string]any       `json:"content" db:"content"`
	OrganizationID string               `json:"organization_id" db:"organization_id"`
	CreatedBy      string               `json:"created_by" db:"created_by"`
	VersionNumber  int                  `json:"version_number" db:"version_number"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" db:"updated_at"`
}

// AssetRepository resolves importable assets by id and type.
type AssetRepository interface {
	GetAsset(ctx context.Context, assetID string, assetType chatModels.AssetType) (*Asset, error)
}
