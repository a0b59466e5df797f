package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/support-agent/backend/internal/storage/models"
)

const usersCollection = "users"

var ErrDuplicateUsername = errors.New("username already registered")

type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(c *Client) *UserRepo {
	return &UserRepo{col: c.db.Collection(usersCollection)}
}

// FindByUsername returns (nil, nil) when no user exists with that name.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Insert(ctx context.Context, username, hashedPassword string) (string, error) {
	user := models.User{
		ID:             uuid.New().String(),
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateUsername
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return user.ID, nil
}
