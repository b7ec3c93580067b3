// Package search ranks indexed issues against a free-text query by cosine
// similarity.
package search

import (
	"context"
	"fmt"
	"log"

	"github.com/opsdesk/triage/internal/config"
	"github.com/opsdesk/triage/internal/embedding"
	"github.com/opsdesk/triage/internal/storage"
	"github.com/opsdesk/triage/pkg/models"
)

// CorpusSource exposes embedding bookkeeping and issue lookup
type CorpusSource interface {
	Corpus(kind string) (*storage.CorpusInfo, error)
	GetIssue(key string) (*models.Issue, error)
}

// VectorIndex ranks stored vectors against a query vector
type VectorIndex interface {
	Search(ctx context.Context, collection, kind string, vector []float32, limit int, threshold float64) ([]models.SearchResult, error)
	SearchExcluding(ctx context.Context, collection, kind, excludeKey string, vector []float32, limit int, threshold float64) ([]models.SearchResult, error)
	CollectionDimensions(ctx context.Context, collection string) (int, error)
}

// Embedder computes query vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
}

// Searcher embeds queries and ranks the indexed corpus
type Searcher struct {
	source   CorpusSource
	index    VectorIndex
	embedder Embedder

	collection string
	kind       string
	maxChars   int
	threshold  float64
}

// New creates a searcher
func New(source CorpusSource, index VectorIndex, embedder Embedder, cfg *config.Config) *Searcher {
	return &Searcher{
		source:     source,
		index:      index,
		embedder:   embedder,
		collection: cfg.Qdrant.Collection,
		kind:       cfg.Indexer.Kind,
		maxChars:   cfg.Indexer.MaxChars,
		threshold:  cfg.Search.ScoreThreshold,
	}
}

// Search finds the issues most similar to a free-text query, descending by
// similarity, at most limit results. A query-embedding failure yields an
// empty result set and no error; a model or dimensionality mismatch with
// the corpus fails instead of ranking across incompatible vector spaces.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if err := s.checkCorpus(ctx); err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("query embedding failed, returning no results: %v", err)
		return []models.SearchResult{}, nil
	}

	return s.index.Search(ctx, s.collection, s.kind, vector, limit, s.threshold)
}

// SimilarToIssue finds stored issues similar to an existing one,
// excluding the issue itself from the results.
func (s *Searcher) SimilarToIssue(ctx context.Context, key string, limit int) ([]models.SearchResult, error) {
	if err := s.checkCorpus(ctx); err != nil {
		return nil, err
	}

	issue, err := s.source.GetIssue(key)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, fmt.Errorf("issue %s not found", key)
	}

	text := embedding.PrepareIssueText(issue.Summary, issue.Description, s.maxChars)
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("query embedding failed, returning no results: %v", err)
		return []models.SearchResult{}, nil
	}

	return s.index.SearchExcluding(ctx, s.collection, s.kind, key, vector, limit, s.threshold)
}

// checkCorpus refuses to query a corpus embedded by a different model.
// An empty corpus is fine: the search will simply find nothing. For a
// populated corpus the live collection is inspected too, so drift between
// the bookkeeping and the collection itself also fails fast.
func (s *Searcher) checkCorpus(ctx context.Context) error {
	corpus, err := s.source.Corpus(s.kind)
	if err != nil {
		return err
	}
	if corpus == nil {
		return nil
	}
	if corpus.ModelVersion != s.embedder.Model() || corpus.Dimensions != s.embedder.Dimensions() {
		return fmt.Errorf("%w: corpus is %s/%dd, query embedder is %s/%dd",
			embedding.ErrModelMismatch,
			corpus.ModelVersion, corpus.Dimensions,
			s.embedder.Model(), s.embedder.Dimensions())
	}

	dims, err := s.index.CollectionDimensions(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to inspect collection %s: %w", s.collection, err)
	}
	if dims != s.embedder.Dimensions() {
		return fmt.Errorf("%w: collection %s holds %dd vectors, query embedder produces %dd",
			embedding.ErrModelMismatch, s.collection, dims, s.embedder.Dimensions())
	}
	return nil
}
