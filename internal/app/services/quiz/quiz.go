// Package quiz implements quiz authoring: quizzes, their ordered questions
// and the answer options of each question.
package quiz

import (
	"context"
	"errors"

	"github.com/dalemusser/quizmart/internal/app/policy/companypolicy"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	membershipstore "github.com/dalemusser/quizmart/internal/app/store/memberships"
	quizstore "github.com/dalemusser/quizmart/internal/app/store/quizzes"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/app/system/txn"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrQuizNotFound     = apperr.NotFoundf("Quiz not found")
	ErrQuestionNotFound = apperr.NotFoundf("Question not found")
	ErrCompanyNotFound  = apperr.NotFoundf("Company not found.")
	ErrTitleRequired    = apperr.BadRequestf("Quiz title is required.")
	ErrQuestionTitle    = apperr.BadRequestf("Question title is required.")
	ErrNoOptions        = apperr.BadRequestf("Each question needs at least one answer option.")
)

// OptionInput is one answer option as submitted by an author.
type OptionInput struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

// QuestionInput is one question with its options.
type QuestionInput struct {
	Title   string        `json:"title" yaml:"title"`
	Options []OptionInput `json:"answer_options" yaml:"answer_options"`
}

// CreateInput is the body of a new quiz.
type CreateInput struct {
	CompanyID   primitive.ObjectID `json:"company_id" yaml:"-"`
	Title       string             `json:"title" yaml:"title"`
	Description string             `json:"description" yaml:"description"`
	Questions   []QuestionInput    `json:"questions" yaml:"questions"`
}

// UpdateInput changes a quiz. Nil fields are left as they are. A non-nil
// Questions replaces the whole question set.
type UpdateInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Questions   *[]QuestionInput `json:"questions"`
}

// QuestionUpdate changes one question. Options always replace the
// existing options; an empty Title keeps the current title.
type QuestionUpdate struct {
	Title   string        `json:"title"`
	Options []OptionInput `json:"answer_options"`
}

// Service owns quiz authoring.
type Service struct {
	db        *mongo.Database
	quizzes   *quizstore.Store
	companies *companystore.Store
	rows      *membershipstore.Store
	audit     *auditlog.Logger
	log       *zap.Logger
}

func New(db *mongo.Database, audit *auditlog.Logger, log *zap.Logger) *Service {
	return &Service{
		db:        db,
		quizzes:   quizstore.New(db),
		companies: companystore.New(db),
		rows:      membershipstore.New(db),
		audit:     audit,
		log:       log,
	}
}

/* ---------- validation ---------- */

func cleanQuestion(q QuestionInput) (QuestionInput, error) {
	q.Title = htmlsanitize.StripTags(q.Title)
	if q.Title == "" {
		return q, ErrQuestionTitle
	}
	opts, err := cleanOptions(q.Options)
	if err != nil {
		return q, err
	}
	q.Options = opts
	return q, nil
}

func cleanOptions(in []OptionInput) ([]OptionInput, error) {
	if len(in) == 0 {
		return nil, ErrNoOptions
	}
	out := make([]OptionInput, 0, len(in))
	for _, o := range in {
		o.Text = htmlsanitize.StripTags(o.Text)
		out = append(out, o)
	}
	return out, nil
}

func cleanQuestions(qs []QuestionInput) ([]QuestionInput, error) {
	out := make([]QuestionInput, 0, len(qs))
	for _, q := range qs {
		c, err := cleanQuestion(q)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func toOptions(in []OptionInput) []models.AnswerOption {
	out := make([]models.AnswerOption, 0, len(in))
	for _, o := range in {
		out = append(out, models.AnswerOption{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

/* ---------- lookups ---------- */

func (s *Service) loadQuiz(ctx context.Context, id primitive.ObjectID) (models.Quiz, error) {
	q, err := s.quizzes.GetQuiz(ctx, id)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return models.Quiz{}, apperr.Internalf(err, "load quiz")
	}
	return q, nil
}

func (s *Service) requireManage(ctx context.Context, companyID, actor primitive.ObjectID) error {
	c, err := s.companies.GetByID(ctx, companyID)
	if errors.Is(err, persist.ErrNotFound) {
		return ErrCompanyNotFound
	}
	if err != nil {
		return apperr.Internalf(err, "load company")
	}
	return companypolicy.RequireManage(ctx, c, s.rows, actor)
}

// editable loads quiz id and checks actor may change it.
func (s *Service) editable(ctx context.Context, id, actor primitive.ObjectID) (models.Quiz, error) {
	q, err := s.loadQuiz(ctx, id)
	if err != nil {
		return models.Quiz{}, err
	}
	if err := s.requireManage(ctx, q.CompanyID, actor); err != nil {
		return models.Quiz{}, err
	}
	return q, nil
}

func (s *Service) full(ctx context.Context, id primitive.ObjectID) (models.QuizFull, error) {
	f, err := s.quizzes.LoadFull(ctx, id)
	if errors.Is(err, persist.ErrNotFound) {
		return models.QuizFull{}, ErrQuizNotFound
	}
	if err != nil {
		return models.QuizFull{}, apperr.Internalf(err, "load quiz")
	}
	return f, nil
}

/* ---------- composite writes ---------- */

// insertQuestions writes qs starting at position first and registers
// compensating deletes for the non-transactional fallback.
func (s *Service) insertQuestions(ctx context.Context, quizID primitive.ObjectID, first int, qs []QuestionInput) error {
	for i, in := range qs {
		q := models.Question{QuizID: quizID, Title: in.Title, Position: first + i}
		stored, err := s.quizzes.InsertQuestion(ctx, q, toOptions(in.Options))
		if err != nil {
			return err
		}
		txn.Compensate(ctx, func(ctx context.Context) error {
			_, err := s.quizzes.DeleteQuestion(ctx, stored.ID)
			return err
		})
	}
	return nil
}

func (s *Service) runTxn(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := txn.Run(ctx, s.db, s.log, fn)
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internalf(err, "%s", op)
}

/* ---------- operations ---------- */

// CreateQuiz stores a quiz with its questions in one transaction.
func (s *Service) CreateQuiz(ctx context.Context, in CreateInput, actor primitive.ObjectID) (models.QuizFull, error) {
	title := htmlsanitize.StripTags(in.Title)
	if title == "" {
		return models.QuizFull{}, ErrTitleRequired
	}
	questions, err := cleanQuestions(in.Questions)
	if err != nil {
		return models.QuizFull{}, err
	}
	if err := s.requireManage(ctx, in.CompanyID, actor); err != nil {
		return models.QuizFull{}, err
	}

	quiz := models.Quiz{
		ID:          primitive.NewObjectID(),
		CompanyID:   in.CompanyID,
		Title:       title,
		Description: htmlsanitize.Sanitize(in.Description),
		CreatedBy:   actor,
	}
	err = s.runTxn(ctx, "create quiz", func(ctx context.Context) error {
		if _, err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
			return err
		}
		txn.Compensate(ctx, func(ctx context.Context) error {
			_, err := s.quizzes.DeleteQuiz(ctx, quiz.ID)
			return err
		})
		return s.insertQuestions(ctx, quiz.ID, 1, questions)
	})
	if err != nil {
		return models.QuizFull{}, err
	}

	s.audit.QuizEvent(ctx, audit.EventQuizCreated, actor, quiz.CompanyID, quiz.ID, quiz.Title)
	return s.full(ctx, quiz.ID)
}

// UpdateQuiz changes title and description and, when given, replaces the
// question set.
func (s *Service) UpdateQuiz(ctx context.Context, id primitive.ObjectID, in UpdateInput, actor primitive.ObjectID) (models.QuizFull, error) {
	var title, desc *string
	if in.Title != nil {
		t := htmlsanitize.StripTags(*in.Title)
		if t == "" {
			return models.QuizFull{}, ErrTitleRequired
		}
		title = &t
	}
	if in.Description != nil {
		d := htmlsanitize.Sanitize(*in.Description)
		desc = &d
	}
	var questions []QuestionInput
	if in.Questions != nil {
		qs, err := cleanQuestions(*in.Questions)
		if err != nil {
			return models.QuizFull{}, err
		}
		questions = qs
	}

	cur, err := s.editable(ctx, id, actor)
	if err != nil {
		return models.QuizFull{}, err
	}

	err = s.runTxn(ctx, "update quiz", func(ctx context.Context) error {
		if _, err := s.quizzes.UpdateQuiz(ctx, id, title, desc); err != nil {
			return err
		}
		txn.Compensate(ctx, func(ctx context.Context) error {
			_, err := s.quizzes.UpdateQuiz(ctx, id, &cur.Title, &cur.Description)
			return err
		})
		if in.Questions == nil {
			return nil
		}

		old, err := s.quizzes.Questions(ctx, id)
		if err != nil {
			return err
		}
		// new rows first, so a failure before the deletes leaves the old set intact
		if err := s.insertQuestions(ctx, id, 1, questions); err != nil {
			return err
		}
		for _, q := range old {
			if _, err := s.quizzes.DeleteQuestion(ctx, q.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.QuizFull{}, err
	}
	return s.full(ctx, id)
}

// DeleteQuiz removes the quiz with its questions and options.
func (s *Service) DeleteQuiz(ctx context.Context, id, actor primitive.ObjectID) (models.Quiz, error) {
	q, err := s.editable(ctx, id, actor)
	if err != nil {
		return models.Quiz{}, err
	}
	err = s.runTxn(ctx, "delete quiz", func(ctx context.Context) error {
		_, err := s.quizzes.DeleteQuiz(ctx, id)
		return err
	})
	if errors.Is(err, persist.ErrNotFound) {
		return models.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return models.Quiz{}, err
	}
	s.audit.QuizEvent(ctx, audit.EventQuizDeleted, actor, q.CompanyID, q.ID, q.Title)
	return q, nil
}

// GetQuiz returns the quiz with its questions in canonical order.
func (s *Service) GetQuiz(ctx context.Context, id primitive.ObjectID) (models.QuizFull, error) {
	return s.full(ctx, id)
}

// ListCompanyQuizzes pages through a company's quizzes.
func (s *Service) ListCompanyQuizzes(ctx context.Context, companyID primitive.ObjectID, p paging.Params) (paging.Envelope[models.Quiz], error) {
	out, err := s.quizzes.ListByCompany(ctx, companyID, p)
	if err != nil {
		return paging.Envelope[models.Quiz]{}, apperr.Internalf(err, "list quizzes")
	}
	return out, nil
}

// AddQuestion appends a question after the quiz's last one.
func (s *Service) AddQuestion(ctx context.Context, quizID primitive.ObjectID, in QuestionInput, actor primitive.ObjectID) (models.QuizFull, error) {
	q, err := cleanQuestion(in)
	if err != nil {
		return models.QuizFull{}, err
	}
	if _, err := s.editable(ctx, quizID, actor); err != nil {
		return models.QuizFull{}, err
	}
	err = s.runTxn(ctx, "add question", func(ctx context.Context) error {
		pos, err := s.quizzes.NextPosition(ctx, quizID)
		if err != nil {
			return err
		}
		if err := s.insertQuestions(ctx, quizID, pos, []QuestionInput{q}); err != nil {
			return err
		}
		return s.quizzes.Touch(ctx, quizID)
	})
	if err != nil {
		return models.QuizFull{}, err
	}
	return s.full(ctx, quizID)
}

func (s *Service) editableQuestion(ctx context.Context, id, actor primitive.ObjectID) (models.Question, error) {
	q, err := s.quizzes.GetQuestion(ctx, id)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Question{}, ErrQuestionNotFound
	}
	if err != nil {
		return models.Question{}, apperr.Internalf(err, "load question")
	}
	if _, err := s.editable(ctx, q.QuizID, actor); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// UpdateQuestion changes the title when given and replaces the options.
func (s *Service) UpdateQuestion(ctx context.Context, id primitive.ObjectID, in QuestionUpdate, actor primitive.ObjectID) (models.QuizFull, error) {
	title := htmlsanitize.StripTags(in.Title)
	opts, err := cleanOptions(in.Options)
	if err != nil {
		return models.QuizFull{}, err
	}

	q, err := s.editableQuestion(ctx, id, actor)
	if err != nil {
		return models.QuizFull{}, err
	}

	err = s.runTxn(ctx, "update question", func(ctx context.Context) error {
		if title != "" && title != q.Title {
			if _, err := s.quizzes.SetQuestionTitle(ctx, id, title); err != nil {
				return err
			}
			txn.Compensate(ctx, func(ctx context.Context) error {
				_, err := s.quizzes.SetQuestionTitle(ctx, id, q.Title)
				return err
			})
		}

		old, err := s.quizzes.QuestionOptions(ctx, id)
		if err != nil {
			return err
		}
		added, err := s.quizzes.InsertOptions(ctx, q, toOptions(opts))
		if err != nil {
			return err
		}
		txn.Compensate(ctx, func(ctx context.Context) error {
			ids := make([]primitive.ObjectID, 0, len(added))
			for _, o := range added {
				ids = append(ids, o.ID)
			}
			return s.quizzes.DeleteOptionsByIDs(ctx, ids)
		})

		oldIDs := make([]primitive.ObjectID, 0, len(old))
		for _, o := range old {
			oldIDs = append(oldIDs, o.ID)
		}
		if err := s.quizzes.DeleteOptionsByIDs(ctx, oldIDs); err != nil {
			return err
		}
		return s.quizzes.Touch(ctx, q.QuizID)
	})
	if err != nil {
		return models.QuizFull{}, err
	}
	return s.full(ctx, q.QuizID)
}

// DeleteQuestion removes a question and its options.
func (s *Service) DeleteQuestion(ctx context.Context, id, actor primitive.ObjectID) (models.QuizFull, error) {
	q, err := s.editableQuestion(ctx, id, actor)
	if err != nil {
		return models.QuizFull{}, err
	}
	err = s.runTxn(ctx, "delete question", func(ctx context.Context) error {
		if _, err := s.quizzes.DeleteQuestion(ctx, id); err != nil {
			return err
		}
		return s.quizzes.Touch(ctx, q.QuizID)
	})
	if errors.Is(err, persist.ErrNotFound) {
		return models.QuizFull{}, ErrQuestionNotFound
	}
	if err != nil {
		return models.QuizFull{}, err
	}
	return s.full(ctx, q.QuizID)
}

// RemoveCompany deletes every quiz of a company.
func (s *Service) RemoveCompany(ctx context.Context, companyID primitive.ObjectID) error {
	ids, err := s.quizzes.IDsByCompany(ctx, companyID)
	if err != nil {
		return apperr.Internalf(err, "list company quizzes")
	}
	for _, id := range ids {
		if _, err := s.quizzes.DeleteQuiz(ctx, id); err != nil && !errors.Is(err, persist.ErrNotFound) {
			return apperr.Internalf(err, "delete quiz")
		}
	}
	return nil
}
