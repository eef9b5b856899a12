package login

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh trades a refresh token for a new pair. The account is
// re-read so a disabled user cannot keep refreshing.
//
// Route: POST /auth/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	claims, err := h.Tokens.Verify(req.RefreshToken, auth.TypeRefresh)
	if err != nil {
		detail := "Invalid refresh token"
		if errors.Is(err, auth.ErrExpiredToken) {
			detail = "Refresh token expired"
		}
		uierrors.Write(w, h.Log, apperr.Unauthorizedf("%s", detail))
		return
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Unauthorizedf("Invalid refresh token"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "refresh")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Write(w, h.Log, apperr.Unauthorizedf("Unknown user"))
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "load user"))
		return
	}
	if !u.IsActive {
		uierrors.Write(w, h.Log, apperr.Unauthorizedf("Account disabled"))
		return
	}

	h.AuditLog.TokenRefreshed(ctx, u.ID)
	h.writeTokens(w, u)
}
