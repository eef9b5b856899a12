// internal/app/features/addresses/handler.go
package addresses

import (
	"github.com/dalemusser/quizmart/internal/app/services/checkout"
	"go.uber.org/zap"
)

// Handler serves the caller's shipping addresses.
type Handler struct {
	Svc *checkout.Service
	Log *zap.Logger
}

func NewHandler(svc *checkout.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
