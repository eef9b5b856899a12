// internal/app/features/login/handler.go
package login

import (
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves registration, sign-in and token refresh.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Users    *userstore.Store
	Tokens   *auth.Tokens
	AuditLog *auditlog.Logger

	// bcrypt cost for new passwords; zero means bcrypt.DefaultCost.
	HashCost int
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Users:    userstore.New(db),
		Tokens:   tokens,
		AuditLog: audit,
	}
}
