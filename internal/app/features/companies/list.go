package companies

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/policy/companypolicy"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

// ServeList pages through visible companies plus the caller's own.
//
// Route: GET /companies
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, viewer, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list companies")
	defer cancel()

	page, err := h.Companies.ListVisible(ctx, viewer, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "list companies"))
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// ServeView returns one company. Hidden companies are visible only to
// their owner and members; anyone else gets not found.
//
// Route: GET /companies/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get company")
	defer cancel()

	c, err := h.load(ctx, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if !c.Visibility {
		_, _, viewer, ok := authz.UserCtx(r)
		if !ok {
			uierrors.Write(w, h.Log, errCompanyNotFound)
			return
		}
		capability, err := h.Memberships.Capability(ctx, c, viewer)
		if err != nil {
			uierrors.Write(w, h.Log, apperr.Internalf(err, "resolve capability"))
			return
		}
		if capability == companypolicy.None {
			uierrors.Write(w, h.Log, errCompanyNotFound)
			return
		}
	}
	jsonio.Write(w, http.StatusOK, c)
}

// ServeMembers pages through a company's rows in one status. Pending
// lists need owner or admin capability.
//
// Route: GET /companies/{id}/members?status&skip&limit
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
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
	status := models.MembershipStatus(r.URL.Query().Get("status"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list company members")
	defer cancel()

	page, err := h.Memberships.ListMembers(ctx, id, status, paging.Parse(r), caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}
