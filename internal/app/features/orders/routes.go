// internal/app/features/orders/routes.go
package orders

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under "/orders".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeOrder)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleManager))
		pr.Get("/revenue", h.ServeRevenue)
		pr.Patch("/{id}/status", h.HandleStatus)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
