package vectordb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// EnsureCollection creates the issue collection if it doesn't exist.
// Cosine distance; dimensionality comes from the embedding config and is
// fixed for the life of the collection.
func (c *Client) EnsureCollection(ctx context.Context, name string, dimensions int) error {
	exists, err := c.qdrant.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = c.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Payload indexes for filtering
	indexes := []struct {
		field     string
		fieldType qdrant.FieldType
	}{
		{"issue_key", qdrant.FieldType_FieldTypeKeyword},
		{"status", qdrant.FieldType_FieldTypeKeyword},
		{"kind", qdrant.FieldType_FieldTypeKeyword},
		{"model_version", qdrant.FieldType_FieldTypeKeyword},
	}

	for _, idx := range indexes {
		_, err = c.qdrant.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			FieldName:      idx.field,
			FieldType:      qdrant.PtrOf(idx.fieldType),
		})
		if err != nil {
			// Index creation failure is not fatal
			fmt.Printf("Warning: failed to create index for %s: %v\n", idx.field, err)
		}
	}

	return nil
}

// CollectionDimensions returns the vector size of an existing collection.
// Used to refuse queries whose vectors would not fit the corpus.
func (c *Client) CollectionDimensions(ctx context.Context, name string) (int, error) {
	info, err := c.qdrant.GetCollectionInfo(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}

	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0, fmt.Errorf("collection %s has no vector params", name)
	}

	return int(params.GetSize()), nil
}

// DeleteCollection removes a collection and every vector in it
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.qdrant.DeleteCollection(ctx, name)
}
