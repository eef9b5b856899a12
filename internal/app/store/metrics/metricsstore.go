package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Counts is the set of totals shown on the admin stats endpoint.
type Counts struct {
	Users         int64 `json:"users"`
	Companies     int64 `json:"companies"`
	Memberships   int64 `json:"memberships"`
	PendingJoins  int64 `json:"pending_joins"`
	Quizzes       int64 `json:"quizzes"`
	QuizResults   int64 `json:"quiz_results"`
	Products      int64 `json:"products"`
	Orders        int64 `json:"orders"`
	PendingOrders int64 `json:"pending_orders"`
}

// FetchDashboardCounts returns the high-level counts used by the admin stats view.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	var out Counts

	counters := []struct {
		coll   string
		filter bson.M
		dst    *int64
	}{
		{"users", bson.M{}, &out.Users},
		{"companies", bson.M{}, &out.Companies},
		{"memberships", bson.M{"status": bson.M{"$in": bson.A{"member", "admin"}}}, &out.Memberships},
		{"memberships", bson.M{"status": bson.M{"$in": bson.A{"pending_invite", "pending_request"}}}, &out.PendingJoins},
		{"quizzes", bson.M{}, &out.Quizzes},
		{"quiz_results", bson.M{}, &out.QuizResults},
		{"products", bson.M{}, &out.Products},
		{"orders", bson.M{}, &out.Orders},
		{"orders", bson.M{"status": "pending"}, &out.PendingOrders},
	}

	var g errgroup.Group
	for _, c := range counters {
		g.Go(func() error {
			if n, err := db.Collection(c.coll).CountDocuments(ctx, c.filter); err == nil {
				*c.dst = n
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
