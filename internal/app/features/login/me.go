package login

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

// ServeMe returns the caller's account.
//
// Route: GET /auth/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "me")
	defer cancel()

	u, err := h.Users.GetByID(ctx, caller.ID)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Write(w, h.Log, apperr.NotFoundf("User not found"))
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "load user"))
		return
	}
	jsonio.Write(w, http.StatusOK, u)
}
