package quizresults

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

// ServeUserAverage returns a user's score across every quiz taken. Any
// signed-in user may read it.
//
// Route: GET /quiz_results/average-score/user/{id}
func (h *Handler) ServeUserAverage(w http.ResponseWriter, r *http.Request) {
	userID, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "average score")
	defer cancel()

	avg, err := h.Grading.AverageByUser(ctx, userID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, avg)
}

// ServeCompanyAverage returns a user's score within one company. Only the
// user, staff, and the company's owner and admins may read it.
//
// Route: GET /quiz_results/average-score/user/{id}/company/{cid}
func (h *Handler) ServeCompanyAverage(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	userID, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	companyID, err := shared.IDParam(r, "cid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "average score by company")
	defer cancel()

	if err := h.canReadCompanyScores(ctx, r, caller, userID, companyID); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	avg, err := h.Grading.AverageByUserAndCompany(ctx, userID, companyID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, avg)
}
