// internal/app/features/catalog/routes.go
package catalog

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

var staffOnly = auth.RequireRole(models.RoleAdmin, models.RoleManager)

// ProductRoutes mounts under "/products".
func ProductRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeProducts)
	r.Get("/slug/{slug}", h.ServeProductBySlug)
	r.Get("/{id}", h.ServeProduct)

	r.Group(func(pr chi.Router) {
		pr.Use(staffOnly)
		pr.Post("/", h.HandleCreateProduct)
		pr.Put("/{id}", h.HandleUpdateProduct)
		pr.Delete("/{id}", h.HandleDeleteProduct)
	})
	return r
}

// CategoryRoutes mounts under "/categories".
func CategoryRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCategories)
	r.Get("/{id}", h.ServeCategory)

	r.Group(func(pr chi.Router) {
		pr.Use(staffOnly)
		pr.Post("/", h.HandleCreateCategory)
		pr.Put("/{id}", h.HandleUpdateCategory)
		pr.Delete("/{id}", h.HandleDeleteCategory)
	})
	return r
}
