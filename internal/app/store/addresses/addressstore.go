// internal/app/store/addresses/addressstore.go
package addressstore

import (
	"context"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store holds shipping addresses. Every lookup is scoped to the owning
// user, so another user's address reads as not found.
type Store struct {
	c *persist.Collection[models.Address]
}

var ErrNotFound = persist.ErrNotFound

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Address](db, "addresses")}
}

// Create stores a for its user. The first address of a user becomes the
// default, and a new default replaces the old one.
func (s *Store) Create(ctx context.Context, a models.Address) (models.Address, error) {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()

	has, err := s.c.Exists(ctx, bson.M{"user_id": a.UserID})
	if err != nil {
		return models.Address{}, err
	}
	if !has {
		a.IsDefault = true
	}
	if a.IsDefault {
		if err := s.clearDefault(ctx, a.UserID); err != nil {
			return models.Address{}, err
		}
	}
	return s.c.Insert(ctx, a)
}

// ListByUser returns the user's addresses, default first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	return s.c.FindAll(ctx, bson.M{"user_id": userID},
		bson.D{{Key: "is_default", Value: -1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

// GetOwned returns the address if userID owns it.
func (s *Store) GetOwned(ctx context.Context, id, userID primitive.ObjectID) (models.Address, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID})
}

// Default returns the user's default address, or ErrNotFound.
func (s *Store) Default(ctx context.Context, userID primitive.ObjectID) (models.Address, error) {
	return s.c.FindOne(ctx, bson.M{"user_id": userID, "is_default": true})
}

// SetDefault makes id the user's only default address.
func (s *Store) SetDefault(ctx context.Context, id, userID primitive.ObjectID) (models.Address, error) {
	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return models.Address{}, err
	}
	if err := s.clearDefault(ctx, userID); err != nil {
		return models.Address{}, err
	}
	return s.c.Set(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"is_default": true})
}

// Delete removes an owned address. Orders keep the id they were placed
// with.
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) (models.Address, error) {
	return s.c.Delete(ctx, bson.M{"_id": id, "user_id": userID})
}

func (s *Store) clearDefault(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.Raw().UpdateMany(ctx,
		bson.M{"user_id": userID, "is_default": true},
		bson.M{"$set": bson.M{"is_default": false}})
	return err
}
