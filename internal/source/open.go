package source

import (
	"context"
	"fmt"

	"assetgrip/internal/config"
)

// Open builds the provider described by cfg. An empty SQLite database is
// seeded with a generated catalog of cfg.SeedCount assets.
func Open(ctx context.Context, cfg config.SourceConfig) (Provider, error) {
	switch cfg.Kind {
	case config.SourceMemory:
		return NewMemoryProvider(GenerateCatalog(cfg.SeedCount), cfg.Latency()), nil

	case config.SourceYAML:
		return NewYAMLProvider(cfg.Path, cfg.Latency())

	case config.SourceSQLite:
		p, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		n, err := p.Count(ctx)
		if err != nil {
			p.Close()
			return nil, err
		}
		if n == 0 && cfg.SeedCount > 0 {
			if _, err := p.Seed(ctx, GenerateCatalog(cfg.SeedCount)); err != nil {
				p.Close()
				return nil, err
			}
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}
