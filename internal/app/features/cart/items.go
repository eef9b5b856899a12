package cart

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

type addItemRequest struct {
	ProductID       string         `json:"product_id"`
	Quantity        *int           `json:"quantity"`
	SelectedOptions map[string]any `json:"selected_options"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// ServeCart returns the caller's cart, creating it on first use.
//
// Route: GET /cart
func (h *Handler) ServeCart(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get cart")
	defer cancel()

	v, err := h.Svc.GetCart(ctx, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, v)
}

// HandleAddItem puts a product in the cart. Quantity defaults to 1.
//
// Route: POST /cart/items
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req addItemRequest
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
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add cart item")
	defer cancel()

	v, err := h.Svc.AddItem(ctx, caller.ID, *productID, qty, req.SelectedOptions)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, v)
}

// HandleUpdateItem sets an item's quantity.
//
// Route: PATCH /cart/items/{item_id}
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	itemID, err := shared.IDParam(r, "item_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req quantityRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update cart item")
	defer cancel()

	v, err := h.Svc.UpdateItem(ctx, caller.ID, itemID, req.Quantity)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, v)
}

// HandleRemoveItem drops one item.
//
// Route: DELETE /cart/items/{item_id}
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	itemID, err := shared.IDParam(r, "item_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove cart item")
	defer cancel()

	v, err := h.Svc.RemoveItem(ctx, caller.ID, itemID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, v)
}

// HandleClear empties the cart.
//
// Route: DELETE /cart
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "clear cart")
	defer cancel()

	v, err := h.Svc.Clear(ctx, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, v)
}
