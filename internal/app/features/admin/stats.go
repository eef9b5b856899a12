package admin

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	metricsstore "github.com/dalemusser/quizmart/internal/app/store/metrics"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

type statsResponse struct {
	metricsstore.Counts
	Revenue models.Money `json:"revenue"`
}

// ServeStats reports collection counts and revenue.
//
// Route: GET /admin/stats
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin stats")
	defer cancel()

	revenue, err := h.Checkout.Revenue(ctx)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, statsResponse{
		Counts:  metricsstore.FetchDashboardCounts(ctx, h.DB),
		Revenue: revenue,
	})
}
