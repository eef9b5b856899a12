package workers

import (
	"testing"
	"time"

	cartstore "github.com/dalemusser/quizmart/internal/app/store/carts"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCartSweeper_Sweep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	carts := cartstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := carts.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	w := NewCartSweeper(carts, zap.NewNop(), time.Hour, 24*time.Hour)

	if n, err := w.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("sweep of a fresh cart: got %d, %v", n, err)
	}

	w.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err := w.Sweep(ctx)
	if err != nil || n != 1 {
		t.Fatalf("sweep after idle period: got %d, %v", n, err)
	}
	if _, err := carts.Get(ctx, c.UserID); err == nil {
		t.Error("cart should be gone")
	}
}

func TestCartSweeper_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	w := NewCartSweeper(cartstore.New(db), zap.NewNop(), 10*time.Millisecond, time.Hour)
	w.Start()
	time.Sleep(30 * time.Millisecond)
	w.Stop()
	w.Stop()
}
