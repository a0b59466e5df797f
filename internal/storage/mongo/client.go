package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/support-agent/backend/pkg/logger"
)

type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewClient(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(20).
		SetMinPoolSize(1)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("Mongo client initialized", zap.String("database", database))

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

// EnsureIndexes creates the unique and query-helper indexes the repositories
// rely on. Safe to call on every startup.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	users := c.db.Collection(usersCollection)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("uniq_username").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	messages := c.db.Collection(messagesCollection)
	_, err = messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sender", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("by_sender_created"),
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	documents := c.db.Collection(documentsCollection)
	_, err = documents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetName("uniq_title").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create document indexes: %w", err)
	}

	logger.Info("Mongo indexes ensured")
	return nil
}
