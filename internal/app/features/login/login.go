package login

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var errBadCredentials = apperr.Unauthorizedf("Incorrect email or password")

// HandleLogin exchanges credentials for a token pair. Unknown emails and
// wrong passwords get the same answer.
//
// Route: POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	email := normalize.Email(req.Email)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.LoginFailed(ctx, audit.EventLoginFailedUserNotFound, nil, email, "user not found")
		uierrors.Write(w, h.Log, errBadCredentials)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "load user"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(req.Password)); err != nil {
		h.AuditLog.LoginFailed(ctx, audit.EventLoginFailedWrongPassword, &u.ID, email, "wrong password")
		uierrors.Write(w, h.Log, errBadCredentials)
		return
	}
	if !u.IsActive {
		h.AuditLog.LoginFailed(ctx, audit.EventLoginFailedUserDisabled, &u.ID, email, "account disabled")
		uierrors.Write(w, h.Log, apperr.Unauthorizedf("Account disabled"))
		return
	}

	h.AuditLog.LoginSuccess(ctx, u.ID, u.Email)
	h.writeTokens(w, u)
}
