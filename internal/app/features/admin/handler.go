// internal/app/features/admin/handler.go
package admin

import (
	"github.com/dalemusser/quizmart/internal/app/services/checkout"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin-only audit trail and site counters.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	Audit     *audit.Store
	Users     *userstore.Store
	Companies *companystore.Store
	Checkout  *checkout.Service
}

func NewHandler(db *mongo.Database, shop *checkout.Service, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		Audit:     audit.New(db),
		Users:     userstore.New(db),
		Companies: companystore.New(db),
		Checkout:  shop,
	}
}
