package memberships

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

// duplicateAsBadRequest reports an existing membership row as 400 on the
// create routes; the service keeps it a Conflict.
func duplicateAsBadRequest(err error) error {
	if errors.Is(err, membership.ErrExists) {
		return apperr.BadRequestf("%s", apperr.Detail(err))
	}
	return err
}

// HandleRequest asks to join a company as the caller.
//
// Route: POST /memberships/company/{id}/request
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	companyID, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "request membership")
	defer cancel()

	m, err := h.Svc.RequestToJoin(ctx, companyID, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, duplicateAsBadRequest(err))
		return
	}
	jsonio.Write(w, http.StatusCreated, m)
}

// HandleInvite invites a user on behalf of the company owner.
//
// Route: POST /memberships/company/{id}/invite/{user_id}
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	companyID, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	userID, err := shared.IDParam(r, "user_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "invite member")
	defer cancel()

	m, err := h.Svc.Invite(ctx, companyID, userID, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, duplicateAsBadRequest(err))
		return
	}
	jsonio.Write(w, http.StatusCreated, m)
}
