// internal/app/features/quizresults/routes.go
package quizresults

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the grading endpoints under "/quiz_results".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleSubmit)
	r.Get("/average-score/user/{id}", h.ServeUserAverage)
	r.Get("/average-score/user/{id}/company/{cid}", h.ServeCompanyAverage)
	return r
}
