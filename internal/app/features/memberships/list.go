package memberships

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

var errOtherUser = apperr.Forbiddenf("You can only view your own memberships.")

// ServeMembership returns the row for a (company, user) pair, or a row
// with status "none" when there is none.
//
// Route: GET /memberships/company/{cid}/user/{uid}
func (h *Handler) ServeMembership(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.IDParam(r, "cid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	userID, err := shared.IDParam(r, "uid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get membership")
	defer cancel()

	m, err := h.Svc.GetMembership(ctx, companyID, userID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, m)
}

// ServeUserCompanies pages through a user's companies in one status
// (member by default). Callers see their own list; staff see anyone's.
//
// Route: GET /memberships/user/{uid}?status&skip&limit
func (h *Handler) ServeUserCompanies(w http.ResponseWriter, r *http.Request) {
	userID, err := shared.IDParam(r, "uid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if !authz.CanSeeUser(r, userID) {
		uierrors.Write(w, h.Log, errOtherUser)
		return
	}
	status := models.MembershipStatus(r.URL.Query().Get("status"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list user companies")
	defer cancel()

	page, err := h.Svc.ListUserCompanies(ctx, userID, status, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// ServeAvailable pages through the caller's companies that uid could be
// invited to: no row of any status exists for the pair.
//
// Route: GET /memberships/available/{uid}
func (h *Handler) ServeAvailable(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	userID, err := shared.IDParam(r, "uid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list available companies")
	defer cancel()

	page, err := h.Svc.ListAvailableCompanies(ctx, userID, caller.ID, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}
