package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "Ada", "ada@example.com")

	if err := ensureAdmin(ctx, db, "ADA@example.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var got models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u.ID}).Decode(&got); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("role: got %q, want admin", got.Role)
	}

	// second run is a no-op
	if err := ensureAdmin(ctx, db, "ada@example.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin (again) failed: %v", err)
	}
}

func TestEnsureAdmin_MissingAccountIsNotFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureAdmin(ctx, db, "nobody@example.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("users created: got %d, want 0", n)
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	err := Startup(t.Context(), nil, AppConfig{TimeoutShort: 7 * time.Second}, DBDeps{}, testLogger())
	if err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", got)
	}
	if got := timeouts.Medium(); got != timeouts.Defaults.Medium {
		t.Errorf("Medium changed: got %v", got)
	}
}
