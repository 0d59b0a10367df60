package chat

import (
	"testing"

	chatModels "quarry/internal/domain/models/chat"
)

func strPtr(s string) *string { return &s }

func TestChatRequest_Validate(t *testing.T) {
	metric := chatModels.AssetTypeMetric
	bogus := chatModels.AssetType("notebook")

	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
	}{
		{"prompt only", ChatRequest{Prompt: strPtr("hello")}, false},
		{"asset only", ChatRequest{AssetID: strPtr("a1"), AssetType: &metric}, false},
		{"asset and prompt", ChatRequest{AssetID: strPtr("a1"), AssetType: &metric, Prompt: strPtr("hi")}, false},
		{"nothing", ChatRequest{}, true},
		{"asset without type", ChatRequest{AssetID: strPtr("a1")}, true},
		{"unknown asset type", ChatRequest{AssetID: strPtr("a1"), AssetType: &bogus}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChatRequest_HasHelpers(t *testing.T) {
	metric := chatModels.AssetTypeMetric

	req := ChatRequest{AssetID: strPtr("a1"), AssetType: &metric, Prompt: strPtr("")}
	if !req.HasAsset() {
		t.Error("HasAsset should be true")
	}
	if req.HasPrompt() {
		t.Error("empty prompt should not count")
	}

	req = ChatRequest{Prompt: strPtr("hello")}
	if req.HasAsset() {
		t.Error("HasAsset should be false without an asset id")
	}
	if !req.HasPrompt() {
		t.Error("HasPrompt should be true")
	}
}
