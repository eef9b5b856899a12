package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "correct-horse-battery"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

var (
	hashOnce sync.Once
	hashed   []byte
	hashErr  error
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		hashed, hashErr = bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	})
	if hashErr != nil {
		t.Fatalf("bcrypt failed: %v", hashErr)
	}
	return string(hashed)
}

// CreateUser creates an active customer whose password is TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, email string) models.User {
	f.t.Helper()
	return f.CreateUserWithRole(ctx, firstName, email, models.RoleCustomer)
}

// CreateUserWithRole creates an active user with the given role.
func (f *Fixtures) CreateUserWithRole(ctx context.Context, firstName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		FirstName:      firstName,
		LastName:       "Tester",
		FullNameCI:     text.Fold(firstName + " Tester"),
		Email:          email,
		HashedPassword: passwordHash(f.t),
		Role:           role,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "users", user)
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, firstName, email string) models.User {
	f.t.Helper()
	return f.CreateUserWithRole(ctx, firstName, email, models.RoleAdmin)
}

// CreateManager creates a test manager user.
func (f *Fixtures) CreateManager(ctx context.Context, firstName, email string) models.User {
	f.t.Helper()
	return f.CreateUserWithRole(ctx, firstName, email, models.RoleManager)
}

// CreateCompany creates a company owned by ownerID.
func (f *Fixtures) CreateCompany(ctx context.Context, name string, ownerID primitive.ObjectID, visible bool) models.Company {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Company{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Visibility: visible,
		OwnerID:    ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "companies", c)
	return c
}

// CreateMembership stores a membership row with the given status.
func (f *Fixtures) CreateMembership(ctx context.Context, companyID, userID primitive.ObjectID, status models.MembershipStatus) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		UserID:    userID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "memberships", m)
	return m
}

// OptionSpec describes one answer option of a fixture question.
type OptionSpec struct {
	Text    string
	Correct bool
}

// QuestionSpec describes one fixture question.
type QuestionSpec struct {
	Title   string
	Options []OptionSpec
}

// CreateQuiz stores a quiz with its questions and options, positioned in
// the order given.
func (f *Fixtures) CreateQuiz(ctx context.Context, companyID, createdBy primitive.ObjectID, title string, questions ...QuestionSpec) models.QuizFull {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.Quiz{
		ID:          primitive.NewObjectID(),
		CompanyID:   companyID,
		Title:       title,
		Description: title + " description",
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "quizzes", q)

	full := models.QuizFull{Quiz: q, Questions: []models.QuestionWithOptions{}}
	for i, qs := range questions {
		question := models.Question{
			ID:        primitive.NewObjectID(),
			QuizID:    q.ID,
			Title:     qs.Title,
			Position:  i + 1,
			CreatedAt: now,
		}
		f.insert(ctx, "questions", question)

		qwo := models.QuestionWithOptions{Question: question, Options: []models.AnswerOption{}}
		for _, o := range qs.Options {
			opt := models.AnswerOption{
				ID:         primitive.NewObjectID(),
				QuestionID: question.ID,
				QuizID:     q.ID,
				Text:       o.Text,
				IsCorrect:  o.Correct,
			}
			f.insert(ctx, "answer_options", opt)
			qwo.Options = append(qwo.Options, opt)
		}
		full.Questions = append(full.Questions, qwo)
	}
	return full
}

// CreateQuizResult stores a graded result.
func (f *Fixtures) CreateQuizResult(ctx context.Context, quizID, userID, companyID primitive.ObjectID, correct, total int) models.QuizResult {
	f.t.Helper()

	r := models.QuizResult{
		ID:             primitive.NewObjectID(),
		QuizID:         quizID,
		UserID:         userID,
		CompanyID:      companyID,
		CorrectAnswers: correct,
		TotalQuestions: total,
		CreatedAt:      time.Now().UTC(),
	}
	f.insert(ctx, "quiz_results", r)
	return r
}

// CreateCategory stores a category.
func (f *Fixtures) CreateCategory(ctx context.Context, name string, parentID *primitive.ObjectID) models.Category {
	f.t.Helper()

	c := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Slug:      text.Fold(name) + "-" + primitive.NewObjectID().Hex()[18:],
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "categories", c)
	return c
}

// CreateProduct stores an active product priced at price (for example "19.99").
func (f *Fixtures) CreateProduct(ctx context.Context, title, price string) models.Product {
	f.t.Helper()

	m, err := models.ParseMoney(price)
	if err != nil {
		f.t.Fatalf("bad fixture price %q: %v", price, err)
	}
	now := time.Now().UTC()
	p := models.Product{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Slug:        primitive.NewObjectID().Hex(),
		Description: title,
		BasePrice:   m,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "products", p)
	return p
}
