package assets

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	chatModels "quarry/internal/domain/models/chat"
)

//go:embed config/*.yaml
var configFiles embed.FS

// TypeInfo describes how one importable asset type renders into a
// chat.
type TypeInfo struct {
	DisplayName    string `yaml:"display_name" json:"display_name"`
	FileKind       string `yaml:"file_kind" json:"file_kind"`
	ImportGreeting string `yaml:"import_greeting" json:"import_greeting"`
}

// Greeting renders the import greeting for an asset name.
func (t *TypeInfo) Greeting(name string) string {
	return strings.ReplaceAll(t.ImportGreeting, "{name}", name)
}

// Registry holds the importable asset type definitions, loaded from
// the embedded YAML file.
type Registry struct {
	types map[chatModels.AssetType]*TypeInfo
	mu    sync.RWMutex
}

// NewRegistry creates a registry from the embedded configuration.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/types.yaml")
	if err != nil {
		return nil, fmt.Errorf("read asset type config: %w", err)
	}

	var file struct {
		AssetTypes map[chatModels.AssetType]*TypeInfo `yaml:"asset_types"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal asset type config: %w", err)
	}
	if len(file.AssetTypes) == 0 {
		return nil, fmt.Errorf("asset type config is empty")
	}

	return &Registry{types: file.AssetTypes}, nil
}

// Get returns the type info for an asset type.
func (r *Registry) Get(assetType chatModels.AssetType) (*TypeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.types[assetType]
	if !ok {
		return nil, fmt.Errorf("unknown asset type %q", assetType)
	}
	return info, nil
}
