package vectordb

import (
	"context"
	"fmt"

	"github.com/opsdesk/triage/pkg/models"
	"github.com/qdrant/go-client/qdrant"
)

// Search ranks indexed issues of one embedding kind by cosine similarity.
// Results come back in Qdrant's ranking order (descending score, stable
// within a query). The query vector must match the collection's
// dimensionality; Qdrant rejects mismatches rather than truncating.
func (c *Client) Search(ctx context.Context, collection, kind string, vector []float32, limit int, threshold float64) ([]models.SearchResult, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeyword("kind", kind),
		},
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         filter,
	}
	if threshold != 0 {
		query.ScoreThreshold = qdrant.PtrOf(float32(threshold))
	}

	points, err := c.qdrant.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]models.SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, payloadToResult(point))
	}

	return results, nil
}

// SearchExcluding searches while excluding one issue by key, for
// "issues similar to this one" queries.
func (c *Client) SearchExcluding(ctx context.Context, collection, kind, excludeKey string, vector []float32, limit int, threshold float64) ([]models.SearchResult, error) {
	// Fetch one extra in case the excluded issue is in the window.
	results, err := c.searchFiltered(ctx, collection, vector, limit+1, threshold, &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeyword("kind", kind),
		},
		MustNot: []*qdrant.Condition{
			qdrant.NewMatchKeyword("issue_key", excludeKey),
		},
	})
	if err != nil {
		return nil, err
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (c *Client) searchFiltered(ctx context.Context, collection string, vector []float32, limit int, threshold float64, filter *qdrant.Filter) ([]models.SearchResult, error) {
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         filter,
	}
	if threshold != 0 {
		query.ScoreThreshold = qdrant.PtrOf(float32(threshold))
	}

	points, err := c.qdrant.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("filtered search failed: %w", err)
	}

	results := make([]models.SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, payloadToResult(point))
	}

	return results, nil
}

// payloadToResult converts a Qdrant point to a SearchResult
func payloadToResult(point *qdrant.ScoredPoint) models.SearchResult {
	result := models.SearchResult{
		Similarity: float64(point.Score),
	}

	payload := point.Payload
	if v := payload["issue_key"]; v != nil {
		result.IssueKey = v.GetStringValue()
	}
	if v := payload["summary"]; v != nil {
		result.Summary = v.GetStringValue()
	}
	if v := payload["description"]; v != nil {
		result.Description = v.GetStringValue()
	}
	if v := payload["status"]; v != nil {
		result.Status = v.GetStringValue()
	}

	return result
}
