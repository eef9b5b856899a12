// internal/app/store/quizresults/quizresultstore.go
package quizresultstore

import (
	"context"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is insert-only: results are never updated.
type Store struct {
	c *persist.Collection[models.QuizResult]
}

func New(db *mongo.Database) *Store {
	return &Store{c: persist.New[models.QuizResult](db, "quiz_results")}
}

// Insert stores one graded submission.
func (s *Store) Insert(ctx context.Context, r models.QuizResult) (models.QuizResult, error) {
	r.ID = primitive.NewObjectID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return s.c.Insert(ctx, r)
}

// Totals sums correct answers and question counts over a set of results.
type Totals struct {
	Results        int64 `bson:"results"`
	CorrectAnswers int64 `bson:"correct_answers"`
	TotalQuestions int64 `bson:"total_questions"`
}

// TotalsForUser aggregates every result of a user. When companyID is non-nil
// only that company's results count.
func (s *Store) TotalsForUser(ctx context.Context, userID primitive.ObjectID, companyID *primitive.ObjectID) (Totals, error) {
	match := bson.M{"user_id": userID}
	if companyID != nil {
		match["company_id"] = *companyID
	}
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"results":         bson.M{"$sum": 1},
			"correct_answers": bson.M{"$sum": "$correct_answers"},
			"total_questions": bson.M{"$sum": "$total_questions"},
		}}},
	}
	cur, err := s.c.Raw().Aggregate(ctx, pipe)
	if err != nil {
		return Totals{}, err
	}
	defer cur.Close(ctx)

	var t Totals
	if cur.Next(ctx) {
		if err := cur.Decode(&t); err != nil {
			return Totals{}, err
		}
	}
	return t, cur.Err()
}

// ListByUser pages through a user's results, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, p paging.Params) (paging.Envelope[models.QuizResult], error) {
	return s.c.FindPage(ctx, bson.M{"user_id": userID},
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, p)
}

// CountByQuiz counts submissions of a quiz.
func (s *Store) CountByQuiz(ctx context.Context, quizID primitive.ObjectID) (int64, error) {
	return s.c.Count(ctx, bson.M{"quiz_id": quizID})
}
