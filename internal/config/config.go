package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	Search     SearchConfig     `yaml:"search"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// StorageConfig contains relational store settings
type StorageConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// ClassifierConfig contains settings for the classification service
type ClassifierConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// IndexerConfig contains batch indexing settings.
// PauseSeconds is the mandatory pause between embedding batches; it exists
// to respect the embedding service's rate limits, not as a tunable
// optimization. MaxChars is the character budget applied to issue text
// before embedding (truncation is lossy and silent).
type IndexerConfig struct {
	Kind         string `yaml:"kind"`
	BatchSize    int    `yaml:"batch_size"`
	PauseSeconds int    `yaml:"pause_seconds"`
	MaxChars     int    `yaml:"max_chars"`
}

// SearchConfig contains similarity search defaults
type SearchConfig struct {
	Limit          int     `yaml:"limit"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"triage.yaml",
		"triage.yml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "triage", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "triage.db"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "issues"
	}
	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = 768
	}
	if cfg.Indexer.Kind == "" {
		cfg.Indexer.Kind = "full_context"
	}
	if cfg.Indexer.BatchSize == 0 {
		cfg.Indexer.BatchSize = 50
	}
	if cfg.Indexer.PauseSeconds == 0 {
		cfg.Indexer.PauseSeconds = 2
	}
	if cfg.Indexer.MaxChars == 0 {
		cfg.Indexer.MaxChars = 6000
	}
	if cfg.Search.Limit == 0 {
		cfg.Search.Limit = 3
	}
	// Search.ScoreThreshold defaults to 0 (no threshold): cosine scores can
	// legitimately be negative, so only an explicit threshold filters.
}
