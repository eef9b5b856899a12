// internal/app/store/quizzes/quizstore.go
package quizstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store covers quizzes and their questions and answer options, which live
// in three collections linked by quiz_id and question_id.
type Store struct {
	quizzes   *persist.Collection[models.Quiz]
	questions *persist.Collection[models.Question]
	options   *persist.Collection[models.AnswerOption]
}

var ErrNotFound = persist.ErrNotFound

func New(db *mongo.Database) *Store {
	return &Store{
		quizzes:   persist.New[models.Quiz](db, "quizzes"),
		questions: persist.New[models.Question](db, "questions"),
		options:   persist.New[models.AnswerOption](db, "answer_options"),
	}
}

// canonical question order
var byPosition = bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}}

/* ---------- quizzes ---------- */

func (s *Store) CreateQuiz(ctx context.Context, q models.Quiz) (models.Quiz, error) {
	now := time.Now().UTC()
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	return s.quizzes.Insert(ctx, q)
}

func (s *Store) GetQuiz(ctx context.Context, id primitive.ObjectID) (models.Quiz, error) {
	return s.quizzes.FindOne(ctx, bson.M{"_id": id})
}

// UpdateQuiz changes title and/or description; nil leaves a field as is.
func (s *Store) UpdateQuiz(ctx context.Context, id primitive.ObjectID, title, description *string) (models.Quiz, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if title != nil {
		set["title"] = *title
	}
	if description != nil {
		set["description"] = *description
	}
	return s.quizzes.Set(ctx, bson.M{"_id": id}, set)
}

// DeleteQuiz removes the quiz and every question and option under it.
func (s *Store) DeleteQuiz(ctx context.Context, id primitive.ObjectID) (models.Quiz, error) {
	q, err := s.quizzes.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		return models.Quiz{}, err
	}
	if err := s.DeleteQuestionsByQuiz(ctx, id); err != nil {
		return q, err
	}
	return q, nil
}

// ListByCompany pages through a company's quizzes, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, p paging.Params) (paging.Envelope[models.Quiz], error) {
	return s.quizzes.FindPage(ctx, bson.M{"company_id": companyID},
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, p)
}

// IDsByCompany returns the ids of every quiz of a company.
func (s *Store) IDsByCompany(ctx context.Context, companyID primitive.ObjectID) ([]primitive.ObjectID, error) {
	qs, err := s.quizzes.FindAll(ctx, bson.M{"company_id": companyID}, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

// Touch refreshes a quiz's UpdatedAt.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.quizzes.Set(ctx, bson.M{"_id": id}, bson.M{"updated_at": time.Now().UTC()})
	return err
}

/* ---------- questions & options ---------- */

// InsertQuestion stores q with its options. Option ids and back references
// are assigned here.
func (s *Store) InsertQuestion(ctx context.Context, q models.Question, opts []models.AnswerOption) (models.QuestionWithOptions, error) {
	if q.ID.IsZero() {
		q.ID = primitive.NewObjectID()
	}
	q.CreatedAt = time.Now().UTC()
	if _, err := s.questions.Insert(ctx, q); err != nil {
		return models.QuestionWithOptions{}, err
	}
	stored, err := s.InsertOptions(ctx, q, opts)
	if err != nil {
		return models.QuestionWithOptions{}, err
	}
	return models.QuestionWithOptions{Question: q, Options: stored}, nil
}

// InsertOptions stores opts under question q.
func (s *Store) InsertOptions(ctx context.Context, q models.Question, opts []models.AnswerOption) ([]models.AnswerOption, error) {
	out := make([]models.AnswerOption, 0, len(opts))
	for _, o := range opts {
		o.ID = primitive.NewObjectID()
		o.QuestionID = q.ID
		o.QuizID = q.QuizID
		out = append(out, o)
	}
	if err := s.options.InsertMany(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetQuestion(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	return s.questions.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store) SetQuestionTitle(ctx context.Context, id primitive.ObjectID, title string) (models.Question, error) {
	return s.questions.Set(ctx, bson.M{"_id": id}, bson.M{"title": title})
}

// DeleteQuestion removes a question and its options.
func (s *Store) DeleteQuestion(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	q, err := s.questions.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		return models.Question{}, err
	}
	_, err = s.options.DeleteMany(ctx, bson.M{"question_id": id})
	return q, err
}

// DeleteOptions removes every option of a question.
func (s *Store) DeleteOptions(ctx context.Context, questionID primitive.ObjectID) error {
	_, err := s.options.DeleteMany(ctx, bson.M{"question_id": questionID})
	return err
}

// DeleteOptionsByIDs removes specific options.
func (s *Store) DeleteOptionsByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.options.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// DeleteQuestionsByQuiz removes every question and option of a quiz.
func (s *Store) DeleteQuestionsByQuiz(ctx context.Context, quizID primitive.ObjectID) error {
	if _, err := s.options.DeleteMany(ctx, bson.M{"quiz_id": quizID}); err != nil {
		return err
	}
	_, err := s.questions.DeleteMany(ctx, bson.M{"quiz_id": quizID})
	return err
}

// NextPosition returns the position after the quiz's last question.
func (s *Store) NextPosition(ctx context.Context, quizID primitive.ObjectID) (int, error) {
	var last models.Question
	err := s.questions.Raw().FindOne(ctx,
		bson.M{"quiz_id": quizID},
		options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}}).SetProjection(bson.M{"position": 1}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Position + 1, nil
}

// Questions returns the quiz's questions in canonical order.
func (s *Store) Questions(ctx context.Context, quizID primitive.ObjectID) ([]models.Question, error) {
	return s.questions.FindAll(ctx, bson.M{"quiz_id": quizID}, byPosition)
}

// Options returns every option of a quiz.
func (s *Store) Options(ctx context.Context, quizID primitive.ObjectID) ([]models.AnswerOption, error) {
	return s.options.FindAll(ctx, bson.M{"quiz_id": quizID}, bson.D{{Key: "_id", Value: 1}})
}

// QuestionOptions returns the options of one question.
func (s *Store) QuestionOptions(ctx context.Context, questionID primitive.ObjectID) ([]models.AnswerOption, error) {
	return s.options.FindAll(ctx, bson.M{"question_id": questionID}, bson.D{{Key: "_id", Value: 1}})
}

// LoadFull returns the quiz with its questions in canonical order, each
// carrying its options.
func (s *Store) LoadFull(ctx context.Context, quizID primitive.ObjectID) (models.QuizFull, error) {
	q, err := s.GetQuiz(ctx, quizID)
	if err != nil {
		return models.QuizFull{}, err
	}
	questions, err := s.Questions(ctx, quizID)
	if err != nil {
		return models.QuizFull{}, err
	}
	opts, err := s.Options(ctx, quizID)
	if err != nil {
		return models.QuizFull{}, err
	}

	byQuestion := make(map[primitive.ObjectID][]models.AnswerOption, len(questions))
	for _, o := range opts {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	full := models.QuizFull{Quiz: q, Questions: make([]models.QuestionWithOptions, 0, len(questions))}
	for _, qu := range questions {
		qo := byQuestion[qu.ID]
		if qo == nil {
			qo = []models.AnswerOption{}
		}
		full.Questions = append(full.Questions, models.QuestionWithOptions{Question: qu, Options: qo})
	}
	return full, nil
}
