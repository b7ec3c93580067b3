package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validProvider(name string) bool {
	return name == "gemini" || name == "openai"
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	if cfg.Qdrant.URL == "" {
		errs = append(errs, ValidationError{"qdrant.url", "required"})
	}

	if cfg.Embedding.Primary.Provider == "" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "required"})
	} else if !validProvider(cfg.Embedding.Primary.Provider) {
		errs = append(errs, ValidationError{"embedding.primary.provider", "must be 'gemini' or 'openai'"})
	}

	if cfg.Embedding.Primary.APIKey == "" {
		errs = append(errs, ValidationError{"embedding.primary.api_key", "required"})
	}

	if cfg.Embedding.Fallback.Provider != "" {
		if !validProvider(cfg.Embedding.Fallback.Provider) {
			errs = append(errs, ValidationError{"embedding.fallback.provider", "must be 'gemini' or 'openai'"})
		}
		// A fallback in a different vector space would corrupt the corpus.
		if cfg.Embedding.Fallback.Dimensions != cfg.Embedding.Primary.Dimensions {
			errs = append(errs, ValidationError{"embedding.fallback.dimensions", "must match embedding.primary.dimensions"})
		}
	}

	if cfg.Classifier.Provider == "" {
		errs = append(errs, ValidationError{"classifier.provider", "required"})
	} else if !validProvider(cfg.Classifier.Provider) {
		errs = append(errs, ValidationError{"classifier.provider", "must be 'gemini' or 'openai'"})
	}

	if cfg.Classifier.APIKey == "" {
		errs = append(errs, ValidationError{"classifier.api_key", "required"})
	}

	if cfg.Indexer.BatchSize < 1 {
		errs = append(errs, ValidationError{"indexer.batch_size", "must be at least 1"})
	}

	if cfg.Indexer.PauseSeconds < 0 {
		errs = append(errs, ValidationError{"indexer.pause_seconds", "must not be negative"})
	}

	if cfg.Indexer.MaxChars < 1 {
		errs = append(errs, ValidationError{"indexer.max_chars", "must be at least 1"})
	}

	if cfg.Search.Limit < 1 {
		errs = append(errs, ValidationError{"search.limit", "must be at least 1"})
	}

	if cfg.Search.ScoreThreshold < -1 || cfg.Search.ScoreThreshold > 1 {
		errs = append(errs, ValidationError{"search.score_threshold", "must be between -1 and 1"})
	}

	return errs
}
