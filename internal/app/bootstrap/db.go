// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	cartstore "github.com/dalemusser/quizmart/internal/app/store/carts"
	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/dalemusser/quizmart/internal/app/system/indexes"
	"github.com/dalemusser/quizmart/internal/app/system/validators"
	"github.com/dalemusser/quizmart/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and the attempt cache. A cache that
// cannot be reached aborts startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("mongo connected",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	c, err := cache.Open(connectCtx, cache.Config{
		Backend:       appCfg.CacheBackend,
		RedisAddr:     appCfg.RedisAddr,
		RedisPassword: appCfg.RedisPassword,
		RedisDB:       appCfg.RedisDB,
	}, db, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}

	deps := DBDeps{MongoClient: client, MongoDatabase: db, Cache: c}
	if appCfg.CartSweepInterval > 0 {
		deps.CartSweeper = workers.NewCartSweeper(cartstore.New(db), logger, appCfg.CartSweepInterval, appCfg.CartIdleTTL)
	}
	return deps, nil
}

// EnsureSchema reconciles indexes and installs collection validators.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	return nil
}
