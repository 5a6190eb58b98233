package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name"`
	HashedPassword string             `bson:"hashed_password"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.HashedPassword,
		CreatedAt:    d.CreatedAt,
	}
}

// UserRepository handles user persistence
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{coll: c.db.Collection(usersCollection)}
}

// Create inserts a new user and sets its ID
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := userDocument{
		Email:          user.Email,
		Name:           user.Name,
		HashedPassword: user.PasswordHash,
		CreatedAt:      user.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id.Hex()
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toDomain(), nil
}
