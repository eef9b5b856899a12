package userstore

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
	c *persist.Collection[models.User]
}

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.User](db, "users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = persist.ErrNotFound

	errBadRole    = errors.New(`role must be "admin"|"manager"|"customer"`)
	errNoEmail    = errors.New("email is required")
	errNoPassword = errors.New("hashed password is required")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.c.FindOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)})
}

// Exists reports whether a user with id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.c.Exists(ctx, bson.M{"_id": id})
}

// Create inserts a new user after normalizing & validating fields.
// The role defaults to customer and new accounts are active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.FullNameCI = normalize.Folded(u.DisplayName())
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = models.RoleCustomer
	}
	u.IsActive = true

	switch u.Role {
	case models.RoleAdmin, models.RoleManager, models.RoleCustomer:
	default:
		return models.User{}, errBadRole
	}
	if u.Email == "" {
		return models.User{}, errNoEmail
	}
	if u.HashedPassword == "" {
		return models.User{}, errNoPassword
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	created, err := s.c.Insert(ctx, u)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.User{}, ErrDuplicateEmail
	}
	return created, err
}

// ProfileUpdate holds the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

// UpdateProfile applies p and returns the updated user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, p ProfileUpdate) (models.User, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.FirstName != nil {
		cur.FirstName = normalize.Name(*p.FirstName)
		set["first_name"] = cur.FirstName
	}
	if p.LastName != nil {
		cur.LastName = normalize.Name(*p.LastName)
		set["last_name"] = cur.LastName
	}
	if p.FirstName != nil || p.LastName != nil {
		set["full_name_ci"] = normalize.Folded(cur.DisplayName())
	}
	if p.Phone != nil {
		set["phone"] = normalize.Name(*p.Phone)
	}
	return s.c.Set(ctx, bson.M{"_id": id}, set)
}

// SetActive enables or disables a user account.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (models.User, error) {
	return s.c.Set(ctx, bson.M{"_id": id}, bson.M{
		"is_active":  active,
		"updated_at": time.Now().UTC(),
	})
}

// SetRole changes a user's role. Unknown roles are rejected.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error) {
	role = normalize.Role(role)
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleCustomer:
	default:
		return models.User{}, errBadRole
	}
	return s.c.Set(ctx, bson.M{"_id": id}, bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	})
}

// List returns one page of users ordered by name.
func (s *Store) List(ctx context.Context, p paging.Params) (paging.Envelope[models.User], error) {
	return s.c.FindPage(ctx, bson.M{}, bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}, p)
}

// NamesByIDs returns display names keyed by user id. Unknown ids are absent.
func (s *Store) NamesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.c.FindAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.DisplayName()
	}
	return out, nil
}
