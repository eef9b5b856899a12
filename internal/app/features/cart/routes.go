// internal/app/features/cart/routes.go
package cart

import (
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under "/cart". Every route acts on the caller's cart.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeCart)
	r.Delete("/", h.HandleClear)
	r.Post("/items", h.HandleAddItem)
	r.Patch("/items/{item_id}", h.HandleUpdateItem)
	r.Delete("/items/{item_id}", h.HandleRemoveItem)
	r.Post("/checkout", h.HandleCheckout)
	return r
}
