// Package indexer implements the batch job that keeps the similarity
// corpus current: it embeds issues lacking a live embedding of the target
// kind and persists them, pacing between batches to respect the embedding
// service's rate limits.
package indexer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/opsdesk/triage/internal/config"
	"github.com/opsdesk/triage/internal/embedding"
	"github.com/opsdesk/triage/internal/storage"
	"github.com/opsdesk/triage/pkg/models"
	"golang.org/x/time/rate"
)

// IssueSource provides issue records and embedding bookkeeping
type IssueSource interface {
	GetIssue(key string) (*models.Issue, error)
	ListUnindexed(kind string, limit int) ([]*models.Issue, error)
	MarkIndexed(issueKey, kind, modelVersion string, dimensions int) error
	DeleteEmbedding(issueKey, kind string) error
	ClearEmbeddings() error
	Corpus(kind string) (*storage.CorpusInfo, error)
}

// VectorSink persists embeddings
type VectorSink interface {
	EnsureCollection(ctx context.Context, name string, dimensions int) error
	Upsert(ctx context.Context, collection, kind, modelVersion string, issue *models.Issue, vector []float32) error
	UpsertBatch(ctx context.Context, collection, kind, modelVersion string, issues []*models.Issue, vectors [][]float32) error
	Delete(ctx context.Context, collection, key, kind string) error
	DeleteCollection(ctx context.Context, name string) error
}

// Embedder computes vectors
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
}

// Indexer embeds and persists unindexed issues in paced batches.
// At most one run should be active against a given corpus at a time;
// serializing runs is the scheduler's job, not the indexer's.
type Indexer struct {
	source   IssueSource
	sink     VectorSink
	embedder Embedder

	collection string
	kind       string
	maxChars   int
	limiter    *rate.Limiter
}

// New creates an indexer
func New(source IssueSource, sink VectorSink, embedder Embedder, cfg *config.Config) *Indexer {
	pause := time.Duration(cfg.Indexer.PauseSeconds) * time.Second
	var limiter *rate.Limiter
	if pause > 0 {
		limiter = rate.NewLimiter(rate.Every(pause), 1)
	}

	return &Indexer{
		source:     source,
		sink:       sink,
		embedder:   embedder,
		collection: cfg.Qdrant.Collection,
		kind:       cfg.Indexer.Kind,
		maxChars:   cfg.Indexer.MaxChars,
		limiter:    limiter,
	}
}

// Run indexes issues lacking a live embedding of the target kind.
// limit <= 0 means all unindexed issues. Per-issue embedding failures are
// skipped and logged; persistence failures abort the run with an error.
// Only persisted vectors count toward stats.Indexed, which is what makes
// rerunning after a partial run pick up exactly the remainder.
func (idx *Indexer) Run(ctx context.Context, batchSize, limit int) (*models.IndexStats, error) {
	start := time.Now()
	stats := &models.IndexStats{}

	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1")
	}

	// Refuse to extend a corpus built by a different model.
	corpus, err := idx.source.Corpus(idx.kind)
	if err != nil {
		return nil, err
	}
	if corpus != nil && (corpus.ModelVersion != idx.embedder.Model() || corpus.Dimensions != idx.embedder.Dimensions()) {
		return nil, fmt.Errorf("%w: corpus is %s/%dd, embedder is %s/%dd",
			embedding.ErrModelMismatch,
			corpus.ModelVersion, corpus.Dimensions,
			idx.embedder.Model(), idx.embedder.Dimensions())
	}

	if err := idx.sink.EnsureCollection(ctx, idx.collection, idx.embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	candidates, err := idx.source.ListUnindexed(idx.kind, limit)
	if err != nil {
		return nil, err
	}
	stats.Candidates = len(candidates)
	log.Printf("indexing %d unindexed issues (kind=%s)", len(candidates), idx.kind)

	for i := 0; i < len(candidates); i += batchSize {
		// Mandatory pacing between batches. The limiter sleeps only this
		// goroutine; request-serving work elsewhere in the process is not
		// blocked.
		if idx.limiter != nil {
			if err := idx.limiter.Wait(ctx); err != nil {
				return stats, err
			}
		}

		end := i + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		indexed, skipped, err := idx.indexBatch(ctx, candidates[i:end])
		if err != nil {
			return stats, err
		}
		stats.Indexed += indexed
		stats.Skipped += skipped
		log.Printf("indexed %d/%d issues", stats.Indexed, stats.Candidates)
	}

	stats.DurationMs = int(time.Since(start).Milliseconds())
	return stats, nil
}

// Reindex recomputes the embedding for one issue immediately, replacing
// whatever vector is stored. The old vector and bookkeeping row are
// evicted first, so a failed re-embed leaves the issue eligible for the
// next batch run rather than serving a stale vector.
func (idx *Indexer) Reindex(ctx context.Context, key string) error {
	issue, err := idx.source.GetIssue(key)
	if err != nil {
		return err
	}
	if issue == nil {
		return fmt.Errorf("issue %s not found", key)
	}

	if err := idx.sink.Delete(ctx, idx.collection, key, idx.kind); err != nil {
		return fmt.Errorf("failed to evict vector for %s: %w", key, err)
	}
	if err := idx.source.DeleteEmbedding(key, idx.kind); err != nil {
		return err
	}

	text := embedding.PrepareIssueText(issue.Summary, issue.Description, idx.maxChars)
	vector, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding failed for %s: %w", key, err)
	}

	if err := idx.sink.Upsert(ctx, idx.collection, idx.kind, idx.embedder.Model(), issue, vector); err != nil {
		return fmt.Errorf("failed to persist vector for %s: %w", key, err)
	}
	return idx.source.MarkIndexed(key, idx.kind, idx.embedder.Model(), idx.embedder.Dimensions())
}

// Recreate drops the vector collection and all embedding bookkeeping so
// the next run rebuilds the corpus from scratch. This is the way out of a
// model mismatch after switching embedding providers.
func (idx *Indexer) Recreate(ctx context.Context) error {
	if err := idx.sink.DeleteCollection(ctx, idx.collection); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", idx.collection, err)
	}
	if err := idx.source.ClearEmbeddings(); err != nil {
		return err
	}
	log.Printf("dropped collection %s and embedding bookkeeping", idx.collection)
	return nil
}

// indexBatch embeds one batch, skipping issues whose embedding call fails,
// and persists the successes.
func (idx *Indexer) indexBatch(ctx context.Context, batch []*models.Issue) (indexed, skipped int, err error) {
	var issues []*models.Issue
	var vectors [][]float32

	for _, issue := range batch {
		text := embedding.PrepareIssueText(issue.Summary, issue.Description, idx.maxChars)

		vector, err := idx.embedder.Embed(ctx, text)
		if err != nil {
			log.Printf("skipping %s: embedding failed: %v", issue.Key, err)
			skipped++
			continue
		}

		issues = append(issues, issue)
		vectors = append(vectors, vector)
	}

	if len(issues) == 0 {
		return 0, skipped, nil
	}

	if err := idx.sink.UpsertBatch(ctx, idx.collection, idx.kind, idx.embedder.Model(), issues, vectors); err != nil {
		return 0, skipped, fmt.Errorf("failed to persist batch: %w", err)
	}

	for _, issue := range issues {
		if err := idx.source.MarkIndexed(issue.Key, idx.kind, idx.embedder.Model(), idx.embedder.Dimensions()); err != nil {
			return indexed, skipped, err
		}
		indexed++
	}

	return indexed, skipped, nil
}
