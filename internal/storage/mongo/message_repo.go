package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/support-agent/backend/internal/storage/models"
)

const messagesCollection = "messages"

type MessageRepo struct {
	col *mongo.Collection
}

func NewMessageRepo(c *Client) *MessageRepo {
	return &MessageRepo{col: c.db.Collection(messagesCollection)}
}

// Append stores one side of a turn. Sender and text must be non-empty;
// records are never updated or deleted afterwards.
func (r *MessageRepo) Append(ctx context.Context, sender, text string, isUser bool) (string, error) {
	if sender == "" {
		return "", fmt.Errorf("message sender must not be empty")
	}
	if text == "" {
		return "", fmt.Errorf("message text must not be empty")
	}

	msg := models.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Text:      text,
		IsUser:    isUser,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.col.InsertOne(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to append message: %w", err)
	}
	return msg.ID, nil
}

// ListBySender returns all of a sender's messages, newest first.
func (r *MessageRepo) ListBySender(ctx context.Context, sender string) ([]models.Message, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"sender": sender},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return out, nil
}

// LastN returns the sender's n most recent messages, newest first.
func (r *MessageRepo) LastN(ctx context.Context, sender string, n int) ([]models.Message, error) {
	if n <= 0 {
		return nil, nil
	}

	cur, err := r.col.Find(ctx,
		bson.M{"sender": sender},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(int64(n)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return out, nil
}
