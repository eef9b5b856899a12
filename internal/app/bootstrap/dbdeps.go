// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/quizmart/internal/app/system/cache"
	"github.com/dalemusser/quizmart/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends opened by ConnectDB.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Cache         cache.Cache

	// nil when cart_sweep_interval is 0
	CartSweeper *workers.CartSweeper
}
