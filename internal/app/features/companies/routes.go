// internal/app/features/companies/routes.go
package companies

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the company endpoints under "/companies". Listing and
// viewing work signed out; everything else needs a caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Patch("/{id}/visibility", h.HandleVisibility)
		pr.Get("/{id}/members", h.ServeMembers)
	})
	return r
}
