package cli

import (
	"fmt"

	"github.com/opsdesk/triage/internal/classify"
	"github.com/opsdesk/triage/internal/config"
	"github.com/opsdesk/triage/internal/embedding"
	"github.com/opsdesk/triage/internal/indexer"
	"github.com/opsdesk/triage/internal/llm"
	"github.com/opsdesk/triage/internal/rules"
	"github.com/opsdesk/triage/internal/search"
	"github.com/opsdesk/triage/internal/storage"
	"github.com/opsdesk/triage/internal/triage"
	"github.com/opsdesk/triage/internal/vectordb"
)

// loadConfig finds, loads, and validates the config file
func loadConfig() (*config.Config, error) {
	cfgPath := config.FindConfigPath(cfgFile)
	if cfgPath == "" {
		return nil, fmt.Errorf("config file not found")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("config error: %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	return cfg, nil
}

// newOrchestrator wires the triage pipeline
func newOrchestrator(cfg *config.Config) (*triage.Orchestrator, func(), error) {
	provider, err := llm.NewProvider(&cfg.Classifier)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create classifier provider: %w", err)
	}

	gateway := classify.NewGateway(provider)
	engine := rules.NewEngine(rules.DefaultRules())

	cleanup := func() { provider.Close() }
	return triage.NewOrchestrator(gateway, engine), cleanup, nil
}

// newSearcher wires the similarity searcher
func newSearcher(cfg *config.Config) (*search.Searcher, func(), error) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embedding.NewFallbackProvider(&cfg.Embedding)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	vdb, err := vectordb.NewClient(&cfg.Qdrant)
	if err != nil {
		embedder.Close()
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		vdb.Close()
		embedder.Close()
		store.Close()
	}
	return search.New(store, vdb, embedder, cfg), cleanup, nil
}

// newIndexer wires the batch indexer
func newIndexer(cfg *config.Config) (*indexer.Indexer, func(), error) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embedding.NewFallbackProvider(&cfg.Embedding)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	vdb, err := vectordb.NewClient(&cfg.Qdrant)
	if err != nil {
		embedder.Close()
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		vdb.Close()
		embedder.Close()
		store.Close()
	}
	return indexer.New(store, vdb, embedder, cfg), cleanup, nil
}
