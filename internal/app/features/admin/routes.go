// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under "/admin".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/audit", h.ServeAudit)
	r.Get("/stats", h.ServeStats)
	return r
}
