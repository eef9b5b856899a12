// internal/app/features/memberships/handler.go
package memberships

import (
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"go.uber.org/zap"
)

// Handler exposes the membership workflow. Every transition is decided by
// membership.Service; handlers only parse ids and pick the status code.
type Handler struct {
	Svc *membership.Service
	Log *zap.Logger
}

func NewHandler(svc *membership.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
