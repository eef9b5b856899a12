// internal/app/features/storefront/routes.go
package storefront

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ReviewRoutes mounts under "/reviews". Anyone may read reviews.
func ReviewRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeReviews)
	r.Get("/{id}", h.ServeReview)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreateReview)
		pr.Patch("/{id}", h.HandleUpdateReview)
		pr.Delete("/{id}", h.HandleDeleteReview)
	})
	return r
}

// WishlistRoutes mounts under "/wishlist". Every route acts on the
// caller's own wishlist.
func WishlistRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeWishlist)
	r.Post("/", h.HandleAddToWishlist)
	r.Delete("/", h.HandleClearWishlist)
	r.Delete("/{product_id}", h.HandleRemoveFromWishlist)
	return r
}

// DiscountRoutes mounts under "/discounts". Shoppers look codes up;
// staff manage them.
func DiscountRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/code/{code}", h.ServeDiscountByCode)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleManager))
		pr.Get("/", h.ServeDiscounts)
		pr.Get("/{id}", h.ServeDiscount)
		pr.Post("/", h.HandleCreateDiscount)
		pr.Patch("/{id}", h.HandleUpdateDiscount)
		pr.Delete("/{id}", h.HandleDeleteDiscount)
	})
	return r
}
