package quizresultstore_test

import (
	"testing"

	quizresultstore "github.com/dalemusser/quizmart/internal/app/store/quizresults"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_TotalsForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := quizresultstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	c1, c2 := primitive.NewObjectID(), primitive.NewObjectID()
	fixtures.CreateQuizResult(ctx, primitive.NewObjectID(), user, c1, 3, 4)
	fixtures.CreateQuizResult(ctx, primitive.NewObjectID(), user, c1, 1, 2)
	fixtures.CreateQuizResult(ctx, primitive.NewObjectID(), user, c2, 0, 5)
	fixtures.CreateQuizResult(ctx, primitive.NewObjectID(), primitive.NewObjectID(), c1, 9, 9)

	tests := []struct {
		name      string
		company   *primitive.ObjectID
		wantN     int64
		wantRight int64
		wantTotal int64
	}{
		{"all companies", nil, 3, 4, 11},
		{"one company", &c1, 2, 4, 6},
		{"no results", ptr(primitive.NewObjectID()), 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.TotalsForUser(ctx, user, tt.company)
			if err != nil {
				t.Fatalf("TotalsForUser failed: %v", err)
			}
			if got.Results != tt.wantN || got.CorrectAnswers != tt.wantRight || got.TotalQuestions != tt.wantTotal {
				t.Errorf("got %+v, want results=%d correct=%d total=%d", got, tt.wantN, tt.wantRight, tt.wantTotal)
			}
		})
	}
}

func TestStore_Insert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := quizresultstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	quiz := primitive.NewObjectID()
	r, err := store.Insert(ctx, models.QuizResult{QuizID: quiz, UserID: primitive.NewObjectID(), CorrectAnswers: 1, TotalQuestions: 2})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if r.ID.IsZero() || r.CreatedAt.IsZero() {
		t.Errorf("expected id and created_at to be set: %+v", r)
	}
	n, err := store.CountByQuiz(ctx, quiz)
	if err != nil {
		t.Fatalf("CountByQuiz failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByQuiz: got %d, want 1", n)
	}
}

func ptr[T any](v T) *T { return &v }
