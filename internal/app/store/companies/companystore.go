// internal/app/store/companies/companystore.go
package companystore

import (
	"context"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *persist.Collection[models.Company]
}

var ErrNotFound = persist.ErrNotFound

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Company](db, "companies")}
}

var byName = bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) Create(ctx context.Context, c models.Company) (models.Company, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.NameCI = text.Fold(c.Name)
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.c.Insert(ctx, c)
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

// Update holds the mutable company fields; nil fields are left untouched.
type Update struct {
	Name        *string
	Description *string
	Visibility  *bool
}

// Update applies u and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u Update) (models.Company, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		set["name"] = *u.Name
		set["name_ci"] = text.Fold(*u.Name)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Visibility != nil {
		set["visibility"] = *u.Visibility
	}
	return s.c.Set(ctx, bson.M{"_id": id}, set)
}

// Delete removes the company document only; dependents are the caller's concern.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Company, error) {
	return s.c.Delete(ctx, bson.M{"_id": id})
}

// ListVisible pages through public companies plus those owned by viewer.
func (s *Store) ListVisible(ctx context.Context, viewer primitive.ObjectID, p paging.Params) (paging.Envelope[models.Company], error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"visibility": true},
		bson.M{"owner_id": viewer},
	}}
	return s.c.FindPage(ctx, filter, byName, p)
}

// ListOwnedBy returns every company owned by owner.
func (s *Store) ListOwnedBy(ctx context.Context, owner primitive.ObjectID) ([]models.Company, error) {
	return s.c.FindAll(ctx, bson.M{"owner_id": owner}, byName)
}

// NamesByIDs returns company names keyed by id.
func (s *Store) NamesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cs, err := s.c.FindAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cs {
		out[c.ID] = c.Name
	}
	return out, nil
}
