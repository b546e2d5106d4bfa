package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/deck-advisor/internal/synergy"
)

// Config represents the application configuration.
type Config struct {
	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Corpus file configuration
	Corpus CorpusConfig `toml:"corpus"`

	// Engine scoring configuration
	Engine EngineConfig `toml:"engine"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DatabaseConfig contains corpus database settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the SQLite corpus database
	AutoMigrate bool   `toml:"auto_migrate"` // Run schema migrations on startup
}

// CorpusConfig contains corpus source file settings.
type CorpusConfig struct {
	CardsFile  string `toml:"cards_file"`  // JSON card corpus to import
	CombosFile string `toml:"combos_file"` // JSON combo corpus to import
	Watch      bool   `toml:"watch"`       // Rebuild when corpus files change
	Debounce   string `toml:"debounce"`    // Minimum interval between rebuilds (e.g., "5s")
}

// EngineConfig contains scoring policy settings.
type EngineConfig struct {
	KeywordWeight    float64 `toml:"keyword_weight"`    // Shared-keyword signal weight
	TribalWeight     float64 `toml:"tribal_weight"`     // Shared-type signal weight
	SimilarityWeight float64 `toml:"similarity_weight"` // Text-similarity signal weight
	ThemeWeight      float64 `toml:"theme_weight"`      // Shared-theme signal weight

	HighCurveThreshold float64 `toml:"high_curve_threshold"` // Avg mana value considered high
	MaxResults         int     `toml:"max_results"`          // Default result cap for queries

	// Matchups overrides the theme -> countered-archetype table.
	// Empty means the built-in table.
	Matchups map[string][]string `toml:"matchups"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	weights := synergy.DefaultWeights()
	return &Config{
		Database: DatabaseConfig{
			Path:        "",
			AutoMigrate: true,
		},
		Corpus: CorpusConfig{
			CardsFile:  "",
			CombosFile: "",
			Watch:      false,
			Debounce:   "5s",
		},
		Engine: EngineConfig{
			KeywordWeight:      weights.Keyword,
			TribalWeight:       weights.Tribal,
			SimilarityWeight:   weights.Similarity,
			ThemeWeight:        weights.Theme,
			HighCurveThreshold: 3.2,
			MaxResults:         20,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".deck-advisor")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the default location. Returns default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path. Returns default
// config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"keyword_weight", c.Engine.KeywordWeight},
		{"tribal_weight", c.Engine.TribalWeight},
		{"similarity_weight", c.Engine.SimilarityWeight},
		{"theme_weight", c.Engine.ThemeWeight},
	}
	sum := 0.0
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", w.name, w.value)
		}
		sum += w.value
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1, got %g", sum)
	}

	if c.Engine.HighCurveThreshold < 0 {
		return fmt.Errorf("high curve threshold cannot be negative: %g", c.Engine.HighCurveThreshold)
	}
	if c.Engine.MaxResults < 0 {
		return fmt.Errorf("max results cannot be negative: %d", c.Engine.MaxResults)
	}

	if c.Corpus.Debounce != "" {
		if _, err := time.ParseDuration(c.Corpus.Debounce); err != nil {
			return fmt.Errorf("invalid debounce %q: %w", c.Corpus.Debounce, err)
		}
	}

	return nil
}

// Weights returns the engine weights as a synergy.Weights value.
func (c *Config) Weights() synergy.Weights {
	return synergy.Weights{
		Keyword:    c.Engine.KeywordWeight,
		Tribal:     c.Engine.TribalWeight,
		Similarity: c.Engine.SimilarityWeight,
		Theme:      c.Engine.ThemeWeight,
	}
}

// GetDebounce returns the corpus watch debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	if c.Corpus.Debounce == "" {
		return 5 * time.Second, nil
	}
	return time.ParseDuration(c.Corpus.Debounce)
}
