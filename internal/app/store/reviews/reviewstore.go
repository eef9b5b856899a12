// internal/app/store/reviews/reviewstore.go
package reviewstore

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

type Store struct {
	c *persist.Collection[models.Review]
}

var (
	// ErrExists is returned when the user already reviewed the product.
	ErrExists   = errors.New("review already exists")
	ErrNotFound = persist.ErrNotFound
)

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Review](db, "reviews")}
}

func (s *Store) Create(ctx context.Context, r models.Review) (models.Review, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	created, err := s.c.Insert(ctx, r)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Review{}, ErrExists
	}
	return created, err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

// List pages through reviews newest first. A non-nil productID narrows
// to one product.
func (s *Store) List(ctx context.Context, productID *primitive.ObjectID, p paging.Params) (paging.Envelope[models.Review], error) {
	filter := bson.M{}
	if productID != nil {
		filter["product_id"] = *productID
	}
	return s.c.FindPage(ctx, filter, bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, p)
}

type Update struct {
	Rating  *int
	Comment *string
}

func (u Update) Empty() bool { return u.Rating == nil && u.Comment == nil }

// Update changes a review written by userID.
func (s *Store) Update(ctx context.Context, id, userID primitive.ObjectID, u Update) (models.Review, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if u.Comment != nil {
		set["comment"] = *u.Comment
	}
	return s.c.Set(ctx, bson.M{"_id": id, "user_id": userID}, set)
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	return s.c.Delete(ctx, bson.M{"_id": id})
}

// DeleteByProduct removes every review of a product.
func (s *Store) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	return s.c.DeleteMany(ctx, bson.M{"product_id": productID})
}
