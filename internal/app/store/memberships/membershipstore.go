// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *persist.Collection[models.Membership]
}

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.Membership](db, "memberships")}
}

var (
	// ErrDuplicateMembership is returned when a row already exists for the (company, user) pair.
	ErrDuplicateMembership = errors.New("membership already exists")
	// ErrNotFound is returned when no row matches, including a status mismatch
	// on a conditional update or delete.
	ErrNotFound = persist.ErrNotFound

	errBadStatus = errors.New("membership status cannot be stored")
)

// Create inserts a new row. StatusNone is never stored.
func (s *Store) Create(ctx context.Context, companyID, userID primitive.ObjectID, status models.MembershipStatus) (models.Membership, error) {
	if !status.Valid() || status == models.StatusNone {
		return models.Membership{}, errBadStatus
	}
	now := time.Now().UTC()
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		UserID:    userID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.c.Insert(ctx, m)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Membership{}, ErrDuplicateMembership
	}
	return created, err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Membership, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

// Get loads the row for a (company, user) pair.
func (s *Store) Get(ctx context.Context, companyID, userID primitive.ObjectID) (models.Membership, error) {
	return s.c.FindOne(ctx, bson.M{"company_id": companyID, "user_id": userID})
}

// Exists reports whether any row exists for the pair.
func (s *Store) Exists(ctx context.Context, companyID, userID primitive.ObjectID) (bool, error) {
	return s.c.Exists(ctx, bson.M{"company_id": companyID, "user_id": userID})
}

// Transition moves row id from one status to another. It returns
// ErrNotFound when the row is gone or no longer in from.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, from, to models.MembershipStatus) (models.Membership, error) {
	return s.c.Set(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"status": to, "updated_at": time.Now().UTC()},
	)
}

// DeleteWithStatus removes row id only while it is in status.
func (s *Store) DeleteWithStatus(ctx context.Context, id primitive.ObjectID, status models.MembershipStatus) (models.Membership, error) {
	return s.c.Delete(ctx, bson.M{"_id": id, "status": status})
}

// DeleteByCompany removes every row of a company.
func (s *Store) DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return s.c.DeleteMany(ctx, bson.M{"company_id": companyID})
}

// CountByStatus counts rows of a company per status.
func (s *Store) CountByStatus(ctx context.Context, companyID primitive.ObjectID, status models.MembershipStatus) (int64, error) {
	return s.c.Count(ctx, bson.M{"company_id": companyID, "status": status})
}
