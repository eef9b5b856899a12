// Package grading scores quiz submissions and reports average scores.
package grading

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	quizstore "github.com/dalemusser/quizmart/internal/app/store/quizzes"
	quizresultstore "github.com/dalemusser/quizmart/internal/app/store/quizresults"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/metrics"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrQuizNotFound = apperr.NotFoundf("Quiz not found")

// Answer is the set of options chosen for one question.
type Answer struct {
	QuestionID primitive.ObjectID   `json:"question_id"`
	AnswerIDs  []primitive.ObjectID `json:"answer_ids"`
}

// Submission is a user's answers to one quiz.
type Submission struct {
	QuizID  primitive.ObjectID `json:"quiz_id"`
	Answers []Answer           `json:"question_answers"`
}

// Result is the outcome of grading one submission.
type Result struct {
	QuizID         primitive.ObjectID `json:"quiz_id"`
	Score          float64            `json:"score"`
	TotalQuestions int                `json:"total_questions"`
	CorrectAnswers int                `json:"correct_answers"`
}

// Average is a user's aggregate score, optionally within one company.
type Average struct {
	UserID         primitive.ObjectID  `json:"user_id"`
	CompanyID      *primitive.ObjectID `json:"company_id,omitempty"`
	TotalQuestions int64               `json:"total_questions"`
	CorrectAnswers int64               `json:"correct_answers"`
	Score          float64             `json:"score"`
}

type Service struct {
	quizzes *quizstore.Store
	results *quizresultstore.Store
	archive *attempts.Archive
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func New(db *mongo.Database, archive *attempts.Archive, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		quizzes: quizstore.New(db),
		results: quizresultstore.New(db),
		archive: archive,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// score returns correct/total as a percentage, 0 for an empty quiz.
func score(correct, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// correctSets maps each question to the ids of its correct options.
func correctSets(full models.QuizFull) map[primitive.ObjectID]map[primitive.ObjectID]bool {
	out := make(map[primitive.ObjectID]map[primitive.ObjectID]bool, len(full.Questions))
	for _, q := range full.Questions {
		set := map[primitive.ObjectID]bool{}
		for _, o := range q.Options {
			if o.IsCorrect {
				set[o.ID] = true
			}
		}
		out[q.ID] = set
	}
	return out
}

// sameSet reports whether chosen, taken as a set, equals want.
func sameSet(chosen []primitive.ObjectID, want map[primitive.ObjectID]bool) bool {
	got := make(map[primitive.ObjectID]bool, len(chosen))
	for _, id := range chosen {
		got[id] = true
	}
	if len(got) != len(want) {
		return false
	}
	for id := range got {
		if !want[id] {
			return false
		}
	}
	return true
}

// Grade counts the questions of full answered exactly right. Questions
// without an entry in answers get no credit; answers to unknown questions
// are ignored.
func Grade(full models.QuizFull, answers []Answer) int {
	byQuestion := make(map[primitive.ObjectID][]primitive.ObjectID, len(answers))
	for _, a := range answers {
		if _, seen := byQuestion[a.QuestionID]; !seen {
			byQuestion[a.QuestionID] = a.AnswerIDs
		}
	}
	sets := correctSets(full)

	correct := 0
	for _, q := range full.Questions {
		chosen, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		if sameSet(chosen, sets[q.ID]) {
			correct++
		}
	}
	return correct
}

// Check grades sub for user, stores the result and archives the attempt.
// An archive failure is logged and does not fail the call.
func (s *Service) Check(ctx context.Context, userID primitive.ObjectID, sub Submission) (Result, error) {
	full, err := s.quizzes.LoadFull(ctx, sub.QuizID)
	if errors.Is(err, persist.ErrNotFound) {
		s.metrics.QuizRejected()
		return Result{}, ErrQuizNotFound
	}
	if err != nil {
		return Result{}, apperr.Internalf(err, "load quiz")
	}

	total := len(full.Questions)
	correct := Grade(full, sub.Answers)

	at := s.now().UTC()
	if _, err := s.results.Insert(ctx, models.QuizResult{
		QuizID:         full.ID,
		UserID:         userID,
		CompanyID:      full.CompanyID,
		CorrectAnswers: correct,
		TotalQuestions: total,
		CreatedAt:      at,
	}); err != nil {
		return Result{}, apperr.Internalf(err, "store quiz result")
	}
	s.metrics.QuizGraded(correct, total)

	submitted := make([]attempts.Submitted, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		submitted = append(submitted, attempts.Submitted{QuestionID: a.QuestionID, AnswerIDs: a.AnswerIDs})
	}
	rec := attempts.NewRecord(userID, full.CompanyID, full.ID, at, submitted, correctSets(full))
	if _, err := s.archive.Save(ctx, userID, full.ID, at, rec); err != nil {
		s.metrics.AttemptArchived(false)
		s.log.Warn("attempt archive failed",
			zap.Error(err),
			zap.String("user_id", userID.Hex()),
			zap.String("quiz_id", full.ID.Hex()))
	} else {
		s.metrics.AttemptArchived(true)
	}

	return Result{
		QuizID:         full.ID,
		Score:          score(int64(correct), int64(total)),
		TotalQuestions: total,
		CorrectAnswers: correct,
	}, nil
}

// AverageByUser aggregates every result of a user.
func (s *Service) AverageByUser(ctx context.Context, userID primitive.ObjectID) (Average, error) {
	return s.average(ctx, userID, nil)
}

// AverageByUserAndCompany aggregates a user's results within one company.
func (s *Service) AverageByUserAndCompany(ctx context.Context, userID, companyID primitive.ObjectID) (Average, error) {
	return s.average(ctx, userID, &companyID)
}

func (s *Service) average(ctx context.Context, userID primitive.ObjectID, companyID *primitive.ObjectID) (Average, error) {
	t, err := s.results.TotalsForUser(ctx, userID, companyID)
	if err != nil {
		return Average{}, apperr.Internalf(err, "aggregate quiz results")
	}
	return Average{
		UserID:         userID,
		CompanyID:      companyID,
		TotalQuestions: t.TotalQuestions,
		CorrectAnswers: t.CorrectAnswers,
		Score:          score(t.CorrectAnswers, t.TotalQuestions),
	}, nil
}
