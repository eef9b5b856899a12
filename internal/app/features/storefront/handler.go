// internal/app/features/storefront/handler.go
package storefront

import (
	storefrontsvc "github.com/dalemusser/quizmart/internal/app/services/storefront"
	"go.uber.org/zap"
)

// Handler serves product reviews, the caller's wishlist and discount
// codes.
type Handler struct {
	Svc *storefrontsvc.Service
	Log *zap.Logger
}

func NewHandler(svc *storefrontsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
