package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/support-agent/backend/internal/storage/models"
)

// ErrDocumentMissing means a catalog entry points at a title the document
// store does not have. That is ingestion drift between the vector index and
// the store; it is surfaced, not swallowed.
var ErrDocumentMissing = errors.New("knowledge document missing from store")

// DocumentStore is the title-keyed lookup the resolver needs.
type DocumentStore interface {
	FindByTitle(ctx context.Context, title string) (*models.KnowledgeDocument, error)
}

type Resolver struct {
	catalog *Catalog
	docs    DocumentStore
}

func NewResolver(catalog *Catalog, docs DocumentStore) *Resolver {
	return &Resolver{catalog: catalog, docs: docs}
}

// Resolve maps a match id to its catalog entry.
func (r *Resolver) Resolve(matchID string) (Entry, bool) {
	return r.catalog.Resolve(matchID)
}

// Knows reports whether the catalog has an entry for the given match id.
func (r *Resolver) Knows(matchID string) bool {
	return r.catalog.Contains(matchID)
}

// FetchContent loads the full document body by its unique title.
func (r *Resolver) FetchContent(ctx context.Context, title string) (string, error) {
	doc, err := r.docs.FindByTitle(ctx, title)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document %q: %w", title, err)
	}
	if doc == nil {
		return "", fmt.Errorf("%w: %q", ErrDocumentMissing, title)
	}
	return doc.Content, nil
}
