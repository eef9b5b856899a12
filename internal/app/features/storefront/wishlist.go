package storefront

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

// Route: GET /wishlist
func (h *Handler) ServeWishlist(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list wishlist")
	defer cancel()

	page, err := h.Svc.Wishlist(ctx, caller.ID, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// HandleAddToWishlist saves a product to the caller's wishlist.
//
// Route: POST /wishlist
func (h *Handler) HandleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	productID, err := shared.OptionalID(req.ProductID, "product_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if productID == nil {
		uierrors.Write(w, h.Log, apperr.BadRequestf("product_id is required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add to wishlist")
	defer cancel()

	item, err := h.Svc.AddToWishlist(ctx, caller.ID, *productID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, item)
}

// Route: DELETE /wishlist/{product_id}
func (h *Handler) HandleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	productID, err := shared.IDParam(r, "product_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove from wishlist")
	defer cancel()

	if err := h.Svc.RemoveFromWishlist(ctx, caller.ID, productID); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, jsonio.Message("Product removed from wishlist"))
}

// Route: DELETE /wishlist
func (h *Handler) HandleClearWishlist(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "clear wishlist")
	defer cancel()

	n, err := h.Svc.ClearWishlist(ctx, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, jsonio.Message("Removed %d products from wishlist", n))
}
