// internal/app/store/categories/categorystore.go
package categorystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *persist.Collection[models.Category]
}

var (
	ErrDuplicateSlug = errors.New("a category with this slug already exists")
	ErrNotFound      = persist.ErrNotFound
	// ErrCycle is returned when a parent assignment would make a category its own ancestor.
	ErrCycle = errors.New("category cannot be its own ancestor")
)

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Category](db, "categories")}
}

func (s *Store) Create(ctx context.Context, c models.Category) (models.Category, error) {
	c.ID = primitive.NewObjectID()
	if c.Slug == "" {
		c.Slug = c.Name
	}
	c.Slug = normalize.Slug(c.Slug)
	c.CreatedAt = time.Now().UTC()
	created, err := s.c.Insert(ctx, c)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Category{}, ErrDuplicateSlug
	}
	return created, err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

// List returns every category ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Category, error) {
	return s.c.FindAll(ctx, bson.M{}, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
}

// Children returns the direct children of parent.
func (s *Store) Children(ctx context.Context, parent primitive.ObjectID) ([]models.Category, error) {
	return s.c.FindAll(ctx, bson.M{"parent_id": parent}, bson.D{{Key: "name", Value: 1}})
}

// Update holds the mutable category fields. ClearParent moves the category
// to the root.
type Update struct {
	Name        *string
	Slug        *string
	ParentID    *primitive.ObjectID
	ClearParent bool
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Category, error) {
	if u.ParentID != nil {
		if err := s.checkAncestry(ctx, id, *u.ParentID); err != nil {
			return models.Category{}, err
		}
	}

	doc := bson.M{}
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Slug != nil {
		set["slug"] = normalize.Slug(*u.Slug)
	}
	switch {
	case u.ClearParent:
		doc["$unset"] = bson.M{"parent_id": ""}
	case u.ParentID != nil:
		set["parent_id"] = *u.ParentID
	}
	if len(set) > 0 {
		doc["$set"] = set
	}
	if len(doc) == 0 {
		return s.GetByID(ctx, id)
	}

	c, err := s.c.Update(ctx, bson.M{"_id": id}, doc)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Category{}, ErrDuplicateSlug
	}
	return c, err
}

// checkAncestry walks up from parent and fails if it reaches id.
func (s *Store) checkAncestry(ctx context.Context, id, parent primitive.ObjectID) error {
	seen := map[primitive.ObjectID]bool{}
	cur := parent
	for {
		if cur == id {
			return ErrCycle
		}
		if seen[cur] {
			return ErrCycle
		}
		seen[cur] = true
		c, err := s.GetByID(ctx, cur)
		if err != nil {
			return err
		}
		if c.ParentID == nil {
			return nil
		}
		cur = *c.ParentID
	}
}

// Delete removes the category and detaches its children to the root.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	c, err := s.c.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		return models.Category{}, err
	}
	_, err = s.c.Raw().UpdateMany(ctx, bson.M{"parent_id": id}, bson.M{"$unset": bson.M{"parent_id": ""}})
	return c, err
}
