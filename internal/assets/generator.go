package assets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	chatModels "quarry/internal/domain/models/chat"
	assetsRepo "quarry/internal/domain/repositories/assets"
)

// GenerateParams keys one import-message generation.
type GenerateParams struct {
	AssetID   string
	AssetType chatModels.AssetType
	UserID    string
	ChatID    string
}

// Generator converts an external asset into synthetic chat messages.
// Implementations may return an empty slice when the asset produces
// nothing to import.
type Generator interface {
	Generate(ctx context.Context, params GenerateParams) ([]chatModels.Message, error)
}

// MessageGenerator is the default Generator: it resolves the asset row
// and renders one import message carrying a text item and a file item.
type MessageGenerator struct {
	assetRepo assetsRepo.AssetRepository
	registry  *Registry
	logger    *slog.Logger
}

// NewMessageGenerator creates the default asset-to-message generator.
func NewMessageGenerator(assetRepo assetsRepo.AssetRepository, registry *Registry, logger *slog.Logger) *MessageGenerator {
	return &MessageGenerator{
		assetRepo: assetRepo,
		registry:  registry,
		logger:    logger,
	}
}

// Generate renders the import messages for an asset. Import messages
// carry no request text; their response items arrive pre-completed.
func (g *MessageGenerator) Generate(ctx context.Context, params GenerateParams) ([]chatModels.Message, error) {
	info, err := g.registry.Get(params.AssetType)
	if err != nil {
		return nil, err
	}

	asset, err := g.assetRepo.GetAsset(ctx, params.AssetID, params.AssetType)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", params.AssetType, params.AssetID, err)
	}

	now := time.Now()
	message := chatModels.Message{
		ID:        uuid.NewString(),
		ChatID:    params.ChatID,
		CreatedBy: params.UserID,
		ResponseMessages: []any{
			map[string]any{
				"id":      uuid.NewString(),
				"type":    "text",
				"message": info.Greeting(asset.Name),
			},
			map[string]any{
				"id":             asset.ID,
				"type":           "file",
				"file_type":      info.FileKind,
				"file_name":      asset.Name,
				"version_number": asset.VersionNumber,
			},
		},
		ReasoningMessages: []any{},
		IsCompleted:       true,
		Title:             &asset.Name,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	return []chatModels.Message{message}, nil
}
