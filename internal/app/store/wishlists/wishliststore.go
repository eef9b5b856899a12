// internal/app/store/wishlists/wishliststore.go
package wishliststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store keeps one row per (user, product) pair.
type Store struct {
	c *persist.Collection[models.WishlistItem]
}

var (
	ErrExists   = errors.New("product already in wishlist")
	ErrNotFound = persist.ErrNotFound
)

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.WishlistItem](db, "wishlist_items")}
}

func (s *Store) Add(ctx context.Context, userID, productID primitive.ObjectID) (models.WishlistItem, error) {
	item, err := s.c.Insert(ctx, models.WishlistItem{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, persist.ErrDuplicate) {
		return models.WishlistItem{}, ErrExists
	}
	return item, err
}

// List pages through the user's wishlist, most recently saved first.
func (s *Store) List(ctx context.Context, userID primitive.ObjectID, p paging.Params) (paging.Envelope[models.WishlistItem], error) {
	return s.c.FindPage(ctx, bson.M{"user_id": userID},
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, p)
}

func (s *Store) Remove(ctx context.Context, userID, productID primitive.ObjectID) (models.WishlistItem, error) {
	return s.c.Delete(ctx, bson.M{"user_id": userID, "product_id": productID})
}

// Clear empties the user's wishlist and returns how many rows went.
func (s *Store) Clear(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.DeleteMany(ctx, bson.M{"user_id": userID})
}

// DeleteByProduct drops a product from every wishlist.
func (s *Store) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	return s.c.DeleteMany(ctx, bson.M{"product_id": productID})
}
