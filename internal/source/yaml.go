package source

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"assetgrip/internal/domain"
)

// catalogFile is the on-disk layout of a YAML catalog
type catalogFile struct {
	Assets []domain.Asset `yaml:"assets"`
}

// LoadYAML reads a YAML catalog and checks every asset has a unique id and
// a known kind
func LoadYAML(path string) ([]domain.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	seen := make(map[string]int, len(file.Assets))
	for i, a := range file.Assets {
		if a.ID == "" {
			return nil, fmt.Errorf("catalog %s: asset %d has no id", path, i)
		}
		if first, ok := seen[a.ID]; ok {
			return nil, fmt.Errorf("catalog %s: asset %d reuses id %s of asset %d", path, i, a.ID, first)
		}
		seen[a.ID] = i
		if _, err := domain.ParseKind(string(a.Kind)); err != nil {
			return nil, fmt.Errorf("catalog %s: asset %s: %w", path, a.ID, err)
		}
	}
	return file.Assets, nil
}

// WriteYAML stores assets as a YAML catalog
func WriteYAML(path string, assets []domain.Asset) error {
	data, err := yaml.Marshal(catalogFile{Assets: assets})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// NewYAMLProvider serves a YAML catalog through a MemoryProvider
func NewYAMLProvider(path string, latency time.Duration) (*MemoryProvider, error) {
	assets, err := LoadYAML(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryProvider(assets, latency), nil
}
