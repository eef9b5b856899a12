// internal/app/features/quizzes/routes.go
package quizzes

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the quiz endpoints under "/quizzes".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/company/{cid}", h.ServeCompanyList)

	r.Put("/questions/{qid}", h.HandleUpdateQuestion)
	r.Delete("/questions/{qid}", h.HandleDeleteQuestion)

	r.Get("/{id}", h.ServeQuiz)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/questions", h.HandleAddQuestion)

	return r
}
