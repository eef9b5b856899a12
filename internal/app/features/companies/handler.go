// internal/app/features/companies/handler.go
package companies

import (
	"context"
	"errors"

	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves company CRUD and the member listing.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Companies   *companystore.Store
	Memberships *membership.Service
	Quizzes     *quiz.Service
	AuditLog    *auditlog.Logger
}

func NewHandler(db *mongo.Database, members *membership.Service, quizzes *quiz.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Companies:   companystore.New(db),
		Memberships: members,
		Quizzes:     quizzes,
		AuditLog:    audit,
	}
}

var (
	errCompanyNotFound = apperr.NotFoundf("Company not found.")
	errNotOwner        = apperr.Forbiddenf("You are not the owner of this company.")
	errNameRequired    = apperr.BadRequestf("Company name is required.")
)

func (h *Handler) load(ctx context.Context, id primitive.ObjectID) (models.Company, error) {
	c, err := h.Companies.GetByID(ctx, id)
	if errors.Is(err, companystore.ErrNotFound) {
		return models.Company{}, errCompanyNotFound
	}
	if err != nil {
		return models.Company{}, apperr.Internalf(err, "load company")
	}
	return c, nil
}

// owned loads the company and requires actor to be its owner.
func (h *Handler) owned(ctx context.Context, id, actor primitive.ObjectID) (models.Company, error) {
	c, err := h.load(ctx, id)
	if err != nil {
		return models.Company{}, err
	}
	if c.OwnerID != actor {
		return models.Company{}, errNotOwner
	}
	return c, nil
}
