package login

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/inputval"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

// HandleRegister creates a customer account and signs it in.
//
// Route: POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	email := normalize.Email(req.Email)
	if !inputval.IsValidEmail(email) {
		uierrors.Write(w, h.Log, apperr.BadRequestf("A valid email address is required."))
		return
	}
	if problem := inputval.PasswordProblem(req.Password); problem != "" {
		uierrors.Write(w, h.Log, apperr.BadRequestf("%s", problem))
		return
	}
	if normalize.Name(req.FirstName) == "" {
		uierrors.Write(w, h.Log, apperr.BadRequestf("First name is required."))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cost())
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "hash password"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register")
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          email,
		Phone:          normalize.Name(req.Phone),
		HashedPassword: string(hash),
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		uierrors.Write(w, h.Log, apperr.Conflictf("Email already registered"))
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "create user"))
		return
	}

	h.AuditLog.Registered(ctx, u.ID, u.Email)
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	h.writeTokens(w, u)
}

func (h *Handler) cost() int {
	if h.HashCost == 0 {
		return bcrypt.DefaultCost
	}
	return h.HashCost
}

func (h *Handler) writeTokens(w http.ResponseWriter, u models.User) {
	pair, err := h.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "issue tokens"))
		return
	}
	jsonio.Write(w, http.StatusOK, pair)
}
