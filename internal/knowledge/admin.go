package knowledge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/support-agent/backend/internal/storage/models"
	"github.com/support-agent/backend/pkg/logger"
	"github.com/support-agent/backend/pkg/retry"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, namespace, id string, vec []float32) error
	Delete(ctx context.Context, namespace, id string) error
}

type DocumentWriter interface {
	Upsert(ctx context.Context, doc *models.KnowledgeDocument) error
	DeleteByID(ctx context.Context, id string) error
}

// Admin maintains the knowledge base outside the request path: it embeds a
// document, upserts its vector into the knowledge namespace and stores the
// body. Index writes are retried here because nothing is waiting on them.
type Admin struct {
	embedder  Embedder
	vectors   VectorStore
	docs      DocumentWriter
	namespace string
	retryCfg  retry.Config
}

func NewAdmin(embedder Embedder, vectors VectorStore, docs DocumentWriter, namespace string) *Admin {
	cfg := retry.DefaultConfig()
	cfg.Logger = logger.GetLogger()

	return &Admin{
		embedder:  embedder,
		vectors:   vectors,
		docs:      docs,
		namespace: namespace,
		retryCfg:  cfg,
	}
}

// AddDocument embeds and stores one document. Returns the id under which
// the vector was indexed; a matching catalog entry must be added to the
// catalog file for the matcher to serve it.
func (a *Admin) AddDocument(ctx context.Context, doc *models.KnowledgeDocument) (string, error) {
	if doc.Title == "" || doc.Content == "" {
		return "", fmt.Errorf("document title and content must not be empty")
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	vec, err := a.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return "", fmt.Errorf("failed to embed document %q: %w", doc.Title, err)
	}

	err = retry.Do(ctx, a.retryCfg, func() error {
		return a.vectors.Upsert(ctx, a.namespace, doc.ID, vec)
	})
	if err != nil {
		return "", fmt.Errorf("failed to index document %q: %w", doc.Title, err)
	}

	if err := a.docs.Upsert(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to store document %q: %w", doc.Title, err)
	}

	logger.Info("Knowledge document added",
		zap.String("id", doc.ID),
		zap.String("title", doc.Title),
		zap.String("namespace", a.namespace),
	)
	return doc.ID, nil
}

// RemoveDocument deletes the vector and the stored body.
func (a *Admin) RemoveDocument(ctx context.Context, id string) error {
	err := retry.Do(ctx, a.retryCfg, func() error {
		return a.vectors.Delete(ctx, a.namespace, id)
	})
	if err != nil {
		return fmt.Errorf("failed to remove vector %q: %w", id, err)
	}

	if err := a.docs.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to remove document %q: %w", id, err)
	}

	logger.Info("Knowledge document removed", zap.String("id", id))
	return nil
}
