// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the token endpoints (typically under "/auth").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh", h.HandleRefresh)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
	})
	return r
}
