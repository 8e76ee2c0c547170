package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"assetgrip/internal/eventbus"
)

// Source kinds
const (
	SourceMemory = "memory"
	SourceYAML   = "yaml"
	SourceSQLite = "sqlite"
)

// Environment overrides
const (
	EnvSourceKind = "ASSETGRIP_SOURCE"
	EnvSourcePath = "ASSETGRIP_SOURCE_PATH"
	EnvLogLevel   = "ASSETGRIP_LOG_LEVEL"
	EnvLogFile    = "ASSETGRIP_LOG_FILE"
	EnvPageSize   = "ASSETGRIP_PAGE_SIZE"
	EnvE2ETest    = "ASSETGRIP_E2E_TEST"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Version  int            `toml:"version"`
	Viewport ViewportConfig `toml:"viewport"`
	Source   SourceConfig   `toml:"source"`
	Log      LogConfig      `toml:"log"`
}

// ViewportConfig is the list geometry
type ViewportConfig struct {
	ItemHeight       float64 `toml:"item_height"`
	ContainerHeight  float64 `toml:"container_height"`
	Buffer           int     `toml:"buffer"`
	Threshold        float64 `toml:"threshold"`
	ScrollDebounceMs int     `toml:"scroll_debounce_ms"`
}

// ScrollDebounce returns the debounce as a duration
func (v ViewportConfig) ScrollDebounce() time.Duration {
	return time.Duration(v.ScrollDebounceMs) * time.Millisecond
}

// SourceConfig selects where assets are paged from
type SourceConfig struct {
	Kind      string `toml:"kind"`
	Path      string `toml:"path"`
	PageSize  int    `toml:"page_size"`
	LatencyMs int    `toml:"latency_ms"`
	SeedCount int    `toml:"seed_count"`
}

// Latency returns the artificial source latency
func (s SourceConfig) Latency() time.Duration {
	return time.Duration(s.LatencyMs) * time.Millisecond
}

// LogConfig controls the log file
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service rooted in the user config dir
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "assetgrip", "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service that announces loads on bus
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// NewConfigServiceAt creates a config service for a fixed file
func NewConfigServiceAt(path string, bus eventbus.EventBus) ConfigService {
	return &configService{bus: bus, filePath: path}
}

// Load loads the configuration from file, falling back to defaults
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:   cs.filePath,
			Source: cfg.Source.Kind,
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv reads KEY=value pairs from path into the environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from ASSETGRIP_* variables
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvSourceKind); ok && v != "" {
		cfg.Source.Kind = v
	}
	if v, ok := os.LookupEnv(EnvSourcePath); ok {
		cfg.Source.Path = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.Log.File = v
	}
	if v, ok := os.LookupEnv(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvPageSize, err)
		}
		cfg.Source.PageSize = n
	}
	return nil
}

// Validate checks the config for values the list cannot work with
func (c *Config) Validate() error {
	if c.Viewport.ItemHeight <= 0 {
		return fmt.Errorf("%w: viewport.item_height must be positive", ErrInvalidConfig)
	}
	if c.Viewport.ContainerHeight < 0 {
		return fmt.Errorf("%w: viewport.container_height must not be negative", ErrInvalidConfig)
	}
	if c.Viewport.Buffer < 0 {
		return fmt.Errorf("%w: viewport.buffer must not be negative", ErrInvalidConfig)
	}
	if c.Viewport.Threshold <= 0 || c.Viewport.Threshold > 1 {
		return fmt.Errorf("%w: viewport.threshold must be in (0, 1]", ErrInvalidConfig)
	}
	if c.Viewport.ScrollDebounceMs < 0 {
		return fmt.Errorf("%w: viewport.scroll_debounce_ms must not be negative", ErrInvalidConfig)
	}
	switch c.Source.Kind {
	case SourceMemory:
	case SourceYAML, SourceSQLite:
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for %s sources", ErrInvalidConfig, c.Source.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown source.kind %q", ErrInvalidConfig, c.Source.Kind)
	}
	if c.Source.PageSize <= 0 {
		return fmt.Errorf("%w: source.page_size must be positive", ErrInvalidConfig)
	}
	if c.Source.LatencyMs < 0 {
		return fmt.Errorf("%w: source.latency_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Viewport: ViewportConfig{
			ItemHeight:       1,
			ContainerHeight:  20,
			Buffer:           5,
			Threshold:        0.8,
			ScrollDebounceMs: 16,
		},
		Source: SourceConfig{
			Kind:      SourceMemory,
			PageSize:  50,
			LatencyMs: 150,
			SeedCount: 500,
		},
		Log: LogConfig{
			File:  "assetgrip.log",
			Level: "info",
		},
	}
}
