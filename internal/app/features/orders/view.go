package orders

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

// ServeList pages through orders, newest first. Staff may filter by
// ?status=.
//
// Route: GET /orders
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	status := models.OrderStatus(r.URL.Query().Get("status"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list orders")
	defer cancel()

	page, err := h.Svc.ListOrders(ctx, caller, status, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// ServeOrder returns one order with its items.
//
// Route: GET /orders/{id}
func (h *Handler) ServeOrder(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get order")
	defer cancel()

	v, err := h.Svc.GetOrder(ctx, id, caller)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, v)
}

type revenueResponse struct {
	Revenue models.Money `json:"revenue"`
}

// ServeRevenue sums every order that was not cancelled.
//
// Route: GET /orders/revenue
func (h *Handler) ServeRevenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "order revenue")
	defer cancel()

	m, err := h.Svc.Revenue(ctx)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, revenueResponse{Revenue: m})
}
