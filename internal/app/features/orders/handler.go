// internal/app/features/orders/handler.go
package orders

import (
	"github.com/dalemusser/quizmart/internal/app/services/checkout"
	"go.uber.org/zap"
)

// Handler serves order history. Customers see their own orders; staff
// see and manage all of them.
type Handler struct {
	Svc *checkout.Service
	Log *zap.Logger
}

func NewHandler(svc *checkout.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
