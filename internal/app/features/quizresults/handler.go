// internal/app/features/quizresults/handler.go
package quizresults

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/quizmart/internal/app/services/grading"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves quiz submissions and score averages.
type Handler struct {
	Grading     *grading.Service
	Memberships *membership.Service
	Companies   *companystore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, grader *grading.Service, members *membership.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Grading:     grader,
		Memberships: members,
		Companies:   companystore.New(db),
		Log:         logger,
	}
}

// canReadCompanyScores allows the user themselves, staff, and the owner and
// admins of the company.
func (h *Handler) canReadCompanyScores(ctx context.Context, r *http.Request, caller *auth.User, userID, companyID primitive.ObjectID) error {
	if authz.CanSeeUser(r, userID) {
		return nil
	}
	c, err := h.Companies.GetByID(ctx, companyID)
	if errors.Is(err, companystore.ErrNotFound) {
		return apperr.NotFoundf("Company not found.")
	}
	if err != nil {
		return apperr.Internalf(err, "load company")
	}
	return h.Memberships.RequireManage(ctx, c, caller.ID)
}
