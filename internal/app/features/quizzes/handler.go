// internal/app/features/quizzes/handler.go
package quizzes

import (
	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"go.uber.org/zap"
)

// Handler serves quiz authoring. Permission checks live in quiz.Service.
type Handler struct {
	Svc *quiz.Service
	Log *zap.Logger
}

func NewHandler(svc *quiz.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
