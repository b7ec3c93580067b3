package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opsdesk/triage/internal/config"
	"github.com/opsdesk/triage/internal/embedding"
	"github.com/opsdesk/triage/internal/storage"
	"github.com/opsdesk/triage/pkg/models"
)

// fakeEmbedder returns fixed vectors, optionally failing for chosen keys
type fakeEmbedder struct {
	model   string
	dims    int
	failFor map[string]bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	for key := range f.failFor {
		if strings.Contains(text, key) {
			return nil, fmt.Errorf("simulated embedding failure")
		}
	}
	return make([]float32, f.dims), nil
}

func (f *fakeEmbedder) Model() string   { return f.model }
func (f *fakeEmbedder) Dimensions() int { return f.dims }

// fakeSink records upserts and deletes in memory
type fakeSink struct {
	ensured bool
	dims    int

	upserted map[string][]float32
	deleted  []string
	dropped  string
	failNext bool
}

func (f *fakeSink) EnsureCollection(ctx context.Context, name string, dimensions int) error {
	f.ensured = true
	f.dims = dimensions
	return nil
}

func (f *fakeSink) Upsert(ctx context.Context, collection, kind, modelVersion string, issue *models.Issue, vector []float32) error {
	return f.UpsertBatch(ctx, collection, kind, modelVersion, []*models.Issue{issue}, [][]float32{vector})
}

func (f *fakeSink) UpsertBatch(ctx context.Context, collection, kind, modelVersion string, issues []*models.Issue, vectors [][]float32) error {
	if f.failNext {
		return fmt.Errorf("simulated persistence failure")
	}
	if f.upserted == nil {
		f.upserted = make(map[string][]float32)
	}
	for i, issue := range issues {
		f.upserted[issue.Key] = vectors[i]
	}
	return nil
}

func (f *fakeSink) Delete(ctx context.Context, collection, key, kind string) error {
	f.deleted = append(f.deleted, key)
	delete(f.upserted, key)
	return nil
}

func (f *fakeSink) DeleteCollection(ctx context.Context, name string) error {
	f.dropped = name
	f.upserted = nil
	return nil
}

func newTestStore(t *testing.T, keys ...string) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "triage.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for i, key := range keys {
		issue := &models.Issue{
			Key:       key,
			Summary:   "issue " + key,
			Status:    "Open",
			CreatedAt: time.Date(2025, 6, 1, 0, 0, i, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 1, 0, 0, i, 0, time.UTC),
		}
		if err := store.UpsertIssue(issue); err != nil {
			t.Fatalf("UpsertIssue(%s) error = %v", key, err)
		}
	}
	return store
}

func testConfig() *config.Config {
	return &config.Config{
		Qdrant:  config.QdrantConfig{Collection: "issues"},
		Indexer: config.IndexerConfig{Kind: "full_context", BatchSize: 2, MaxChars: 6000},
	}
}

func TestIndexer_Run(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2", "HELP-3")
	sink := &fakeSink{}
	emb := &fakeEmbedder{model: "test-model", dims: 8}

	idx := New(store, sink, emb, testConfig())

	stats, err := idx.Run(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.Candidates != 3 {
		t.Errorf("Candidates = %d, want 3", stats.Candidates)
	}
	if stats.Indexed != 3 {
		t.Errorf("Indexed = %d, want 3", stats.Indexed)
	}
	if stats.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", stats.Skipped)
	}
	if !sink.ensured || sink.dims != 8 {
		t.Errorf("collection not ensured with embedder dims: %+v", sink)
	}
	if len(sink.upserted) != 3 {
		t.Errorf("upserted %d vectors, want 3", len(sink.upserted))
	}

	corpus, err := store.Corpus("full_context")
	if err != nil {
		t.Fatalf("Corpus() error = %v", err)
	}
	if corpus == nil || corpus.Count != 3 || corpus.ModelVersion != "test-model" {
		t.Errorf("Corpus() = %+v", corpus)
	}
}

func TestIndexer_Run_Idempotent(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2")
	sink := &fakeSink{}
	emb := &fakeEmbedder{model: "test-model", dims: 8}

	idx := New(store, sink, emb, testConfig())

	first, err := idx.Run(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Indexed != 2 {
		t.Fatalf("first Indexed = %d, want 2", first.Indexed)
	}

	second, err := idx.Run(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Indexed != 0 {
		t.Errorf("second Indexed = %d, want 0 (idempotence)", second.Indexed)
	}
	if second.Candidates != 0 {
		t.Errorf("second Candidates = %d, want 0", second.Candidates)
	}
}

func TestIndexer_Run_SkipsFailedItems(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2", "HELP-3")
	sink := &fakeSink{}
	emb := &fakeEmbedder{model: "test-model", dims: 8, failFor: map[string]bool{"HELP-2": true}}

	idx := New(store, sink, emb, testConfig())

	stats, err := idx.Run(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", stats.Indexed)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}

	// The failed issue stays eligible for the next run.
	unindexed, _ := store.ListUnindexed("full_context", 0)
	if len(unindexed) != 1 || unindexed[0].Key != "HELP-2" {
		t.Errorf("unindexed after run = %+v, want only HELP-2", unindexed)
	}
}

func TestIndexer_Run_PersistenceFailureAborts(t *testing.T) {
	store := newTestStore(t, "HELP-1")
	sink := &fakeSink{failNext: true}
	emb := &fakeEmbedder{model: "test-model", dims: 8}

	idx := New(store, sink, emb, testConfig())

	if _, err := idx.Run(context.Background(), 2, 0); err == nil {
		t.Errorf("Run() did not surface persistence failure")
	}
}

func TestIndexer_Run_ModelMismatchFails(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2")
	sink := &fakeSink{}

	idx := New(store, sink, &fakeEmbedder{model: "model-x", dims: 8}, testConfig())
	if _, err := idx.Run(context.Background(), 2, 0); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	// New unindexed issue, embedder now reports a different model.
	store.UpsertIssue(&models.Issue{Key: "HELP-3", Summary: "new", CreatedAt: time.Now(), UpdatedAt: time.Now()})

	idx2 := New(store, sink, &fakeEmbedder{model: "model-y", dims: 8}, testConfig())
	_, err := idx2.Run(context.Background(), 2, 0)
	if !errors.Is(err, embedding.ErrModelMismatch) {
		t.Errorf("Run() error = %v, want ErrModelMismatch", err)
	}
}

func TestIndexer_Run_PacesBetweenBatches(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2", "HELP-3", "HELP-4")
	sink := &fakeSink{}
	emb := &fakeEmbedder{model: "test-model", dims: 8}

	cfg := testConfig()
	cfg.Indexer.PauseSeconds = 1
	idx := New(store, sink, emb, cfg)

	start := time.Now()
	stats, err := idx.Run(context.Background(), 2, 0)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Indexed != 4 {
		t.Fatalf("Indexed = %d, want 4", stats.Indexed)
	}

	// Two batches, so the limiter must have waited out one full pause
	// between them.
	if elapsed < time.Second {
		t.Errorf("Run() took %v, want at least 1s of inter-batch pacing", elapsed)
	}
}

func TestIndexer_Reindex(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2")
	sink := &fakeSink{}
	emb := &fakeEmbedder{model: "test-model", dims: 8}

	idx := New(store, sink, emb, testConfig())
	if _, err := idx.Run(context.Background(), 2, 0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := idx.Reindex(context.Background(), "HELP-1"); err != nil {
		t.Fatalf("Reindex() error = %v", err)
	}

	if len(sink.deleted) != 1 || sink.deleted[0] != "HELP-1" {
		t.Errorf("deleted = %v, want the old HELP-1 vector evicted", sink.deleted)
	}
	if _, ok := sink.upserted["HELP-1"]; !ok {
		t.Errorf("HELP-1 vector not re-upserted")
	}
	indexed, _ := store.IsIndexed("HELP-1", "full_context")
	if !indexed {
		t.Errorf("IsIndexed(HELP-1) = false after Reindex")
	}
}

func TestIndexer_Reindex_EmbeddingFailureLeavesEligible(t *testing.T) {
	store := newTestStore(t, "HELP-1")
	sink := &fakeSink{}

	idx := New(store, sink, &fakeEmbedder{model: "test-model", dims: 8}, testConfig())
	if _, err := idx.Run(context.Background(), 2, 0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	idx2 := New(store, sink, &fakeEmbedder{model: "test-model", dims: 8,
		failFor: map[string]bool{"HELP-1": true}}, testConfig())
	if err := idx2.Reindex(context.Background(), "HELP-1"); err == nil {
		t.Fatalf("Reindex() did not surface embedding failure")
	}

	// Eviction happened before the failed embed, so a later batch run
	// picks the issue up again.
	unindexed, _ := store.ListUnindexed("full_context", 0)
	if len(unindexed) != 1 || unindexed[0].Key != "HELP-1" {
		t.Errorf("unindexed = %+v, want HELP-1 eligible again", unindexed)
	}
}

func TestIndexer_Reindex_UnknownIssue(t *testing.T) {
	store := newTestStore(t)
	idx := New(store, &fakeSink{}, &fakeEmbedder{model: "test-model", dims: 8}, testConfig())

	if err := idx.Reindex(context.Background(), "NOPE-1"); err == nil {
		t.Errorf("Reindex() on unknown issue did not fail")
	}
}

func TestIndexer_Recreate(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2")
	sink := &fakeSink{}

	idx := New(store, sink, &fakeEmbedder{model: "model-x", dims: 8}, testConfig())
	if _, err := idx.Run(context.Background(), 2, 0); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := idx.Recreate(context.Background()); err != nil {
		t.Fatalf("Recreate() error = %v", err)
	}
	if sink.dropped != "issues" {
		t.Errorf("dropped collection = %q, want issues", sink.dropped)
	}

	corpus, err := store.Corpus("full_context")
	if err != nil {
		t.Fatalf("Corpus() error = %v", err)
	}
	if corpus != nil {
		t.Errorf("Corpus() = %+v after Recreate, want nil", corpus)
	}

	// The way out of a model mismatch: after Recreate a new model indexes
	// everything afresh.
	idx2 := New(store, sink, &fakeEmbedder{model: "model-y", dims: 8}, testConfig())
	stats, err := idx2.Run(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("Run() after Recreate error = %v", err)
	}
	if stats.Indexed != 2 {
		t.Errorf("Indexed = %d after Recreate, want 2", stats.Indexed)
	}
}

func TestIndexer_Run_Limit(t *testing.T) {
	store := newTestStore(t, "HELP-1", "HELP-2", "HELP-3")
	sink := &fakeSink{}
	emb := &fakeEmbedder{model: "test-model", dims: 8}

	idx := New(store, sink, emb, testConfig())

	stats, err := idx.Run(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2 (limit)", stats.Indexed)
	}
}
