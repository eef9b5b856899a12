// internal/app/store/discounts/discountstore.go
package discountstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *persist.Collection[models.Discount]
}

var (
	ErrDuplicateCode = errors.New("a discount with this code already exists")
	ErrNotFound      = persist.ErrNotFound
)

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Discount](db, "discounts")}
}

// NormalizeCode trims and upper-cases a code so lookups ignore case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Store) Create(ctx context.Context, d models.Discount) (models.Discount, error) {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.Code = NormalizeCode(d.Code)
	d.CreatedAt = now
	d.UpdatedAt = now
	created, err := s.c.Insert(ctx, d)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Discount{}, ErrDuplicateCode
	}
	return created, err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Discount, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetByCode(ctx context.Context, code string) (models.Discount, error) {
	return s.c.FindOne(ctx, bson.M{"code": NormalizeCode(code)})
}

// List pages through discounts by code.
func (s *Store) List(ctx context.Context, p paging.Params) (paging.Envelope[models.Discount], error) {
	return s.c.FindPage(ctx, bson.M{}, bson.D{{Key: "code", Value: 1}}, p)
}

// Replace writes every mutable field of d. The caller validates the
// merged document first.
func (s *Store) Replace(ctx context.Context, d models.Discount) (models.Discount, error) {
	updated, err := s.c.Set(ctx, bson.M{"_id": d.ID}, bson.M{
		"code":          NormalizeCode(d.Code),
		"description":   d.Description,
		"discount_type": d.Type,
		"value":         d.Value,
		"valid_from":    d.ValidFrom,
		"valid_to":      d.ValidTo,
		"is_active":     d.IsActive,
		"updated_at":    time.Now().UTC(),
	})
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Discount{}, ErrDuplicateCode
	}
	return updated, err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Discount, error) {
	return s.c.Delete(ctx, bson.M{"_id": id})
}
