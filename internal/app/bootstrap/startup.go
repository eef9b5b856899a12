// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup applies the configured timeouts, promotes the configured admin
// account and starts the cart sweeper. It runs after schema setup and
// before BuildHandler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Batch:  appCfg.TimeoutBatch,
	})

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps.MongoDatabase, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	if deps.CartSweeper != nil {
		deps.CartSweeper.Start()
	}
	return nil
}

// ensureAdmin gives the account registered under email the admin role.
// Accounts are created through registration, so a missing one is only
// logged.
func ensureAdmin(ctx context.Context, db *mongo.Database, email string, logger *zap.Logger) error {
	users := userstore.New(db)
	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		logger.Warn("admin_email has no account yet; register it and restart", zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return nil
	}
	if _, err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted user to admin", zap.String("email", u.Email), zap.String("previous_role", u.Role))
	return nil
}
