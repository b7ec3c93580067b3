package vectordb

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdesk/triage/pkg/models"
	"github.com/qdrant/go-client/qdrant"
)

// Upsert inserts or replaces the vector for one (issue, kind) pair.
// The point ID is deterministic in (issue key, kind), so recomputation
// replaces the live row instead of duplicating it.
func (c *Client) Upsert(ctx context.Context, collection, kind, modelVersion string, issue *models.Issue, vector []float32) error {
	point := issueToPoint(issue, kind, modelVersion, vector)

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// UpsertBatch inserts or replaces multiple issue vectors
func (c *Client) UpsertBatch(ctx context.Context, collection, kind, modelVersion string, issues []*models.Issue, vectors [][]float32) error {
	if len(issues) != len(vectors) {
		return fmt.Errorf("issues and vectors length mismatch")
	}

	points := make([]*qdrant.PointStruct, len(issues))
	for i, issue := range issues {
		points[i] = issueToPoint(issue, kind, modelVersion, vectors[i])
	}

	_, err := c.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("batch upsert failed: %w", err)
	}
	return nil
}

// Delete removes a point by issue key and kind
func (c *Client) Delete(ctx context.Context, collection, key, kind string) error {
	_, err := c.qdrant.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewIDUUID(models.EmbeddingUUID(key, kind))},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// issueToPoint converts an Issue to a Qdrant point
func issueToPoint(issue *models.Issue, kind, modelVersion string, vector []float32) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(issue.UUID(kind)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: map[string]*qdrant.Value{
			"issue_key":     qdrant.NewValueString(issue.Key),
			"summary":       qdrant.NewValueString(issue.Summary),
			"description":   qdrant.NewValueString(issue.Description),
			"status":        qdrant.NewValueString(issue.Status),
			"kind":          qdrant.NewValueString(kind),
			"model_version": qdrant.NewValueString(modelVersion),
			"text_hash":     qdrant.NewValueString(issue.TextHash()),
			"indexed_at":    qdrant.NewValueString(time.Now().UTC().Format(time.RFC3339)),
		},
	}
}
