// internal/domain/models/attempt.go
package models

// AttemptAnswer is one selected option annotated with its correctness at
// grading time.
type AttemptAnswer struct {
	ID        string `json:"id"`
	IsCorrect bool   `json:"is_correct"`
}

// AttemptQuestion holds the options selected for one question.
type AttemptQuestion struct {
	QuestionID string          `json:"question_id"`
	Answers    []AttemptAnswer `json:"answers"`
}

// QuizAttemptRecord is the cache-resident snapshot of a single graded
// submission. It is never persisted in MongoDB and expires with its key.
// Timestamp is RFC 3339 UTC.
type QuizAttemptRecord struct {
	UserID    string            `json:"user_id"`
	CompanyID string            `json:"company_id"`
	QuizID    string            `json:"quiz_id"`
	Timestamp string            `json:"timestamp"`
	Answers   []AttemptQuestion `json:"answers"`
}
