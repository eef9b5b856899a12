// internal/app/features/addresses/routes.go
package addresses

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under "/addresses".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{id}/default", h.HandleSetDefault)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
