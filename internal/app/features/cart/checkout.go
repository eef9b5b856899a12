package cart

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

type checkoutRequest struct {
	AddressID string `json:"address_id"`
}

// HandleCheckout converts the cart into a pending order priced at the
// current product prices, then empties the cart. The body is optional.
//
// Route: POST /cart/checkout
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := jsonio.Decode(w, r, &req); err != nil {
			uierrors.Write(w, h.Log, err)
			return
		}
	}
	addressID, err := shared.OptionalID(req.AddressID, "address_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "checkout")
	defer cancel()

	order, err := h.Svc.CreateOrderFromCart(ctx, caller.ID, addressID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, order)
}
