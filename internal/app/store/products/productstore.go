// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *persist.Collection[models.Product]
}

var (
	ErrDuplicateSlug = errors.New("a product with this slug already exists")
	ErrNotFound      = persist.ErrNotFound
)

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Product](db, "products")}
}

// Create stores p. An empty slug is derived from the title.
func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Slug == "" {
		p.Slug = p.Title
	}
	p.Slug = normalize.Slug(p.Slug)
	p.CreatedAt = now
	p.UpdatedAt = now
	created, err := s.c.Insert(ctx, p)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Product{}, ErrDuplicateSlug
	}
	return created, err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.c.FindOne(ctx, bson.M{"slug": normalize.Slug(slug)})
}

// GetByIDs returns products keyed by id. Missing ids are absent.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ps, err := s.c.FindAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

// Update holds the mutable product fields; nil leaves a field as is.
type Update struct {
	Title       *string
	Slug        *string
	Description *string
	BasePrice   *models.Money
	CategoryID  *primitive.ObjectID
	IsActive    *bool
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Slug != nil {
		set["slug"] = normalize.Slug(*u.Slug)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.BasePrice != nil {
		set["base_price"] = *u.BasePrice
	}
	if u.CategoryID != nil {
		set["category_id"] = *u.CategoryID
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	p, err := s.c.Set(ctx, bson.M{"_id": id}, set)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Product{}, ErrDuplicateSlug
	}
	return p, err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return s.c.Delete(ctx, bson.M{"_id": id})
}

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID *primitive.ObjectID
	ActiveOnly bool
}

// List pages through products ordered by title.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) (paging.Envelope[models.Product], error) {
	filter := bson.M{}
	if f.CategoryID != nil {
		filter["category_id"] = *f.CategoryID
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	return s.c.FindPage(ctx, filter, bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}, p)
}

// CountInCategory counts products assigned to a category.
func (s *Store) CountInCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return s.c.Count(ctx, bson.M{"category_id": categoryID})
}
