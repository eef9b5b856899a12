package orders

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus moves an order to the requested status.
//
// Route: PATCH /orders/{id}/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
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
	var req statusRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	to := models.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update order status")
	defer cancel()

	o, err := h.Svc.UpdateStatus(ctx, id, to, caller)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, o)
}

// HandleDelete removes an order and its items.
//
// Route: DELETE /orders/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete order")
	defer cancel()

	o, err := h.Svc.DeleteOrder(ctx, id, caller)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, o)
}
