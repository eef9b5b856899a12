package users

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

var errUserNotFound = apperr.NotFoundf("User not found")

// ServeUser returns one account. Callers see themselves; staff see anyone.
// Other accounts read as not found.
//
// Route: GET /users/{id}
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if !authz.CanSeeUser(r, id) {
		uierrors.Write(w, h.Log, errUserNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get user")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Write(w, h.Log, errUserNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "load user"))
		return
	}
	jsonio.Write(w, http.StatusOK, u)
}

// ServeList pages through every account ordered by name.
//
// Route: GET /users
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	page, err := h.Users.List(ctx, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "list users"))
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}
