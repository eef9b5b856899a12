// internal/app/features/export/routes.go
package export

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the export endpoints under "/export".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/quiz", h.ServeQuizExport)
	return r
}
