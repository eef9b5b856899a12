package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pinger is the part of the cache the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Cache  Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. cache may be nil.
func NewHandler(client *mongo.Client, cache Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Cache:  cache,
		Log:    logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health. MongoDB and the cache are pinged in
// parallel under the ping deadline.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "cache":"connected" }
//
// On failure: 503 with "status":"error" and the failing dependency marked
// "disconnected".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected"}
	var dbErr, cacheErr error

	var g errgroup.Group
	g.Go(func() error {
		dbErr = h.Client.Ping(ctx, readpref.Primary())
		return nil
	})
	if h.Cache != nil {
		resp.Cache = "connected"
		g.Go(func() error {
			cacheErr = h.Cache.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	if dbErr != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(dbErr))
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}
	if cacheErr != nil {
		h.Log.Error("health-check: cache ping failed", zap.Error(cacheErr))
		resp.Cache = "disconnected"
		if resp.Message == "" {
			resp.Message = "Cache unavailable"
		}
	}
	if dbErr != nil || cacheErr != nil {
		resp.Status = "error"
		jsonio.Write(w, http.StatusServiceUnavailable, resp)
		return
	}
	jsonio.Write(w, http.StatusOK, resp)
}
