package users

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type profileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// HandleUpdateProfile lets the caller change their own name and phone.
//
// Route: PATCH /users/me
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req profileRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	upd := userstore.ProfileUpdate(req)
	if upd.Empty() {
		uierrors.Write(w, h.Log, apperr.BadRequestf("Nothing to update"))
		return
	}
	if upd.FirstName != nil && normalize.Name(*upd.FirstName) == "" {
		uierrors.Write(w, h.Log, apperr.BadRequestf("First name cannot be empty."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update profile")
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, caller.ID, upd)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Write(w, h.Log, errUserNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "update profile"))
		return
	}
	jsonio.Write(w, http.StatusOK, u)
}

type activeRequest struct {
	IsActive bool `json:"is_active"`
}

// HandleSetActive enables or disables an account. Admins cannot disable
// themselves. A disabled user's tokens stop working on the next request.
//
// Route: PATCH /users/{id}/active
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
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
	var req activeRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if id == caller.ID && !req.IsActive {
		uierrors.Write(w, h.Log, apperr.BadRequestf("You cannot disable your own account."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set user active")
	defer cancel()

	u, err := h.Users.SetActive(ctx, id, req.IsActive)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Write(w, h.Log, errUserNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "set user active"))
		return
	}
	if !req.IsActive {
		h.AuditLog.UserDeactivated(ctx, caller.ID, u.ID)
	}
	h.Log.Info("user active flag changed",
		zap.String("user_id", u.ID.Hex()),
		zap.Bool("is_active", u.IsActive),
		zap.String("actor_id", caller.ID.Hex()))
	jsonio.Write(w, http.StatusOK, u)
}
