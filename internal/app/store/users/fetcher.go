package userstore

import (
	"context"

	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request,
// so role changes and disabled accounts take effect immediately.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by ID. Disabled accounts return auth.ErrUserInactive.
func (f *Fetcher) FetchUser(ctx context.Context, id primitive.ObjectID) (*auth.User, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":        1,
		"first_name": 1,
		"last_name":  1,
		"email":      1,
		"role":       1,
		"is_active":  1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": id}, proj).Decode(&u); err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, auth.ErrUserInactive
	}
	return &auth.User{
		ID:    u.ID,
		Name:  u.DisplayName(),
		Email: u.Email,
		Role:  u.Role,
	}, nil
}
