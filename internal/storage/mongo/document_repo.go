package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/support-agent/backend/internal/storage/models"
)

const documentsCollection = "documents"

type DocumentRepo struct {
	col *mongo.Collection
}

func NewDocumentRepo(c *Client) *DocumentRepo {
	return &DocumentRepo{col: c.db.Collection(documentsCollection)}
}

// FindByTitle returns (nil, nil) when no document carries that title.
func (r *DocumentRepo) FindByTitle(ctx context.Context, title string) (*models.KnowledgeDocument, error) {
	var doc models.KnowledgeDocument
	err := r.col.FindOne(ctx, bson.M{"title": title}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepo) Upsert(ctx context.Context, doc *models.KnowledgeDocument) error {
	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
