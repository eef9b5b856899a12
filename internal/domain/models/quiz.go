// internal/domain/models/quiz.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quiz belongs to a company. Questions live in their own collection and
// are ordered by Position.
type Quiz struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID   primitive.ObjectID `bson:"company_id" json:"company_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Question struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuizID    primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	Title     string             `bson:"title" json:"title"`
	Position  int                `bson:"position" json:"position"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// AnswerOption is one choice of a question. The set of options flagged
// IsCorrect defines the question's correct answer.
type AnswerOption struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionID primitive.ObjectID `bson:"question_id" json:"question_id"`
	QuizID     primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	Text       string             `bson:"text" json:"text"`
	IsCorrect  bool               `bson:"is_correct" json:"is_correct"`
}

// QuestionWithOptions is a question joined with its options.
type QuestionWithOptions struct {
	Question
	Options []AnswerOption `json:"answer_options"`
}

// QuizFull is a quiz joined with its ordered questions.
type QuizFull struct {
	Quiz
	Questions []QuestionWithOptions `json:"questions"`
}

// QuizResult is the persisted aggregate of one graded submission.
// It is written once and never updated.
type QuizResult struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	QuizID         primitive.ObjectID `bson:"quiz_id" json:"quiz_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	CompanyID      primitive.ObjectID `bson:"company_id" json:"company_id"`
	CorrectAnswers int                `bson:"correct_answers" json:"correct_answers"`
	TotalQuestions int                `bson:"total_questions" json:"total_questions"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
