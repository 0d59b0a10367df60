package assets

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	chatModels "quarry/internal/domain/models/chat"
	assetsRepo "quarry/internal/domain/repositories/assets"
)

type fakeAssetRepo struct {
	asset *assetsRepo.Asset
	err   error
}

func (f *fakeAssetRepo) GetAsset(ctx context.Context, assetID string, assetType chatModels.AssetType) (*assetsRepo.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.asset, nil
}

func TestMessageGenerator_Generate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	repo := &fakeAssetRepo{asset: &assetsRepo.Asset{
		ID:            "asset-1",
		Name:          "Monthly Revenue",
		VersionNumber: 3,
	}}
	generator := NewMessageGenerator(repo, registry, logger)

	messages, err := generator.Generate(context.Background(), GenerateParams{
		AssetID:   "asset-1",
		AssetType: chatModels.AssetTypeMetric,
		UserID:    "user-1",
		ChatID:    "chat-1",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	message := messages[0]
	if message.ChatID != "chat-1" || message.CreatedBy != "user-1" {
		t.Errorf("message ownership = %s/%s", message.ChatID, message.CreatedBy)
	}
	if !message.IsCompleted {
		t.Error("import messages must arrive completed")
	}
	if message.RequestMessage != nil {
		t.Error("import messages carry no request text")
	}
	if message.Title == nil || *message.Title != "Monthly Revenue" {
		t.Errorf("title = %v, want the asset name", message.Title)
	}

	items, ok := message.ResponseMessages.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("ResponseMessages = %#v, want text item plus file item", message.ResponseMessages)
	}
	text := items[0].(map[string]any)
	if text["type"] != "text" || text["message"] != "Monthly Revenue has been added to the chat." {
		t.Errorf("text item = %v", text)
	}
	file := items[1].(map[string]any)
	if file["type"] != "file" || file["id"] != "asset-1" || file["version_number"] != 3 {
		t.Errorf("file item = %v", file)
	}
}

func TestMessageGenerator_UnknownAsset(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	repo := &fakeAssetRepo{err: errors.New("not found")}
	generator := NewMessageGenerator(repo, registry, logger)

	_, err = generator.Generate(context.Background(), GenerateParams{
		AssetID:   "missing",
		AssetType: chatModels.AssetTypeDashboard,
	})
	if err == nil {
		t.Fatal("expected an error for an unresolvable asset")
	}
}
