package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "expands env var",
			input:  "${TEST_VAR}",
			expect: "test-value",
		},
		{
			name:   "keeps unset var",
			input:  "${UNSET_VAR}",
			expect: "${UNSET_VAR}",
		},
		{
			name:   "expands in string",
			input:  "https://${TEST_VAR}.example.com",
			expect: "https://test-value.example.com",
		},
		{
			name:   "no vars",
			input:  "plain string",
			expect: "plain string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expect {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expect)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	content := `
storage:
  path: "issues.db"

qdrant:
  url: "http://localhost:6334"
  collection: "helpdesk"

embedding:
  primary:
    provider: "gemini"
    model: "gemini-embedding-001"
    api_key: "test-key"
    dimensions: 768

classifier:
  provider: "openai"
  model: "gpt-4o-mini"
  api_key: "test-key"
`

	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Qdrant.URL != "http://localhost:6334" {
		t.Errorf("Qdrant.URL = %v, want http://localhost:6334", cfg.Qdrant.URL)
	}

	if cfg.Qdrant.Collection != "helpdesk" {
		t.Errorf("Qdrant.Collection = %v, want helpdesk", cfg.Qdrant.Collection)
	}

	if cfg.Embedding.Primary.Provider != "gemini" {
		t.Errorf("Embedding.Primary.Provider = %v, want gemini", cfg.Embedding.Primary.Provider)
	}

	if cfg.Classifier.Provider != "openai" {
		t.Errorf("Classifier.Provider = %v, want openai", cfg.Classifier.Provider)
	}

	// Defaults fill unspecified sections
	if cfg.Indexer.BatchSize != 50 {
		t.Errorf("Indexer.BatchSize = %v, want default 50", cfg.Indexer.BatchSize)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Indexer.Kind != "full_context" {
		t.Errorf("Indexer.Kind = %v, want full_context", cfg.Indexer.Kind)
	}

	if cfg.Indexer.PauseSeconds != 2 {
		t.Errorf("Indexer.PauseSeconds = %v, want 2", cfg.Indexer.PauseSeconds)
	}

	if cfg.Indexer.MaxChars != 6000 {
		t.Errorf("Indexer.MaxChars = %v, want 6000", cfg.Indexer.MaxChars)
	}

	if cfg.Search.Limit != 3 {
		t.Errorf("Search.Limit = %v, want 3", cfg.Search.Limit)
	}

	if cfg.Embedding.Primary.Dimensions != 768 {
		t.Errorf("Primary.Dimensions = %v, want 768", cfg.Embedding.Primary.Dimensions)
	}
}

func TestValidate_FallbackDimensionMismatch(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Qdrant.URL = "http://localhost:6334"
	cfg.Embedding.Primary = ProviderConfig{Provider: "gemini", APIKey: "k", Dimensions: 768}
	cfg.Embedding.Fallback = ProviderConfig{Provider: "openai", APIKey: "k", Dimensions: 1536}
	cfg.Classifier = ClassifierConfig{Provider: "openai", APIKey: "k"}

	errs := Validate(cfg)
	found := false
	for _, e := range errs {
		if ve, ok := e.(ValidationError); ok && ve.Field == "embedding.fallback.dimensions" {
			found = true
		}
	}
	if !found {
		t.Errorf("Validate() did not flag fallback dimension mismatch: %v", errs)
	}
}
