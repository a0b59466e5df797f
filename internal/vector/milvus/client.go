package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/vector"
	"github.com/support-agent/backend/pkg/logger"
)

const (
	idField        = "doc_id"
	embeddingField = "embedding"
)

// Client talks to a single Milvus collection. Namespaces map onto Milvus
// partitions, so a query never sees vectors from another namespace.
type Client struct {
	client         client.Client
	collectionName string
	dimension      int
}

func NewClient(endpoint, collectionName string, dimension int) (*Client, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
		zap.Int("dimension", dimension),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		dimension:      dimension,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnsureCollection creates the collection with a cosine IVF_FLAT index if it
// does not exist yet, then loads it.
func (c *Client) EnsureCollection(ctx context.Context) error {
	has, err := c.client.HasCollection(ctx, c.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !has {
		schema := &entity.Schema{
			CollectionName: c.collectionName,
			Description:    "Knowledge base embeddings",
			Fields: []*entity.Field{
				{
					Name:       idField,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{"max_length": "64"},
				},
				{
					Name:       embeddingField,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": fmt.Sprintf("%d", c.dimension)},
				},
			},
		}

		if err := c.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 1024)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		if err := c.client.CreateIndex(ctx, c.collectionName, embeddingField, idx, false); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}

		logger.Info("Collection created", zap.String("collection", c.collectionName))
	}

	if err := c.client.LoadCollection(ctx, c.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

func (c *Client) ensurePartition(ctx context.Context, namespace string) error {
	has, err := c.client.HasPartition(ctx, c.collectionName, namespace)
	if err != nil {
		return fmt.Errorf("failed to check partition: %w", err)
	}
	if has {
		return nil
	}
	if err := c.client.CreatePartition(ctx, c.collectionName, namespace); err != nil {
		return fmt.Errorf("failed to create partition: %w", err)
	}
	return nil
}

// Upsert writes one vector into the given namespace.
func (c *Client) Upsert(ctx context.Context, namespace, id string, vec []float32) error {
	if len(vec) != c.dimension {
		return fmt.Errorf("%w: got %d, want %d", vector.ErrDimensionMismatch, len(vec), c.dimension)
	}
	if err := c.ensurePartition(ctx, namespace); err != nil {
		return err
	}

	_, err := c.client.Upsert(
		ctx,
		c.collectionName,
		namespace,
		entity.NewColumnVarChar(idField, []string{id}),
		entity.NewColumnFloatVector(embeddingField, c.dimension, [][]float32{vec}),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	if err := c.client.Flush(ctx, c.collectionName, false); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Debug("Vector upserted",
		zap.String("namespace", namespace),
		zap.String("id", id),
	)
	return nil
}

// Query runs a top-k cosine similarity search inside one namespace and
// returns candidates in provider order.
func (c *Client) Query(ctx context.Context, namespace string, vec []float32, topK int) ([]vector.Candidate, error) {
	if len(vec) != c.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", vector.ErrDimensionMismatch, len(vec), c.dimension)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(16)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := c.client.Search(
		ctx,
		c.collectionName,
		[]string{namespace},
		"",
		[]string{idField},
		[]entity.Vector{entity.FloatVector(vec)},
		embeddingField,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	candidates := make([]vector.Candidate, 0)
	for _, sr := range results {
		idCol := sr.Fields.GetColumn(idField)
		if idCol == nil {
			continue
		}
		for i := 0; i < sr.ResultCount; i++ {
			id, err := idCol.Get(i)
			if err != nil {
				continue
			}
			candidates = append(candidates, vector.Candidate{
				ID:    id.(string),
				Score: float64(sr.Scores[i]),
			})
		}
	}

	logger.Debug("Similarity query completed",
		zap.String("namespace", namespace),
		zap.Int("topK", topK),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// Delete removes one vector from the given namespace.
func (c *Client) Delete(ctx context.Context, namespace, id string) error {
	err := c.client.DeleteByPks(
		ctx,
		c.collectionName,
		namespace,
		entity.NewColumnVarChar(idField, []string{id}),
	)
	if err != nil {
		return fmt.Errorf("failed to delete vector: %w", err)
	}

	logger.Debug("Vector deleted",
		zap.String("namespace", namespace),
		zap.String("id", id),
	)
	return nil
}
