package cartstore

import (
	"testing"
	"time"

	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A cart picked up by the idle scan but touched before its delete keeps
// both its row and its items.
func TestSweep_SkipsCartTouchedAfterScan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	s := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	touched, err := s.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := s.AddItem(ctx, touched.ID, primitive.NewObjectID(), 2, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	n, err := s.sweep(ctx, []primitive.ObjectID{touched.ID}, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if n != 0 {
		t.Errorf("swept: got %d, want 0", n)
	}
	if _, err := s.Get(ctx, touched.UserID); err != nil {
		t.Errorf("cart gone: %v", err)
	}
	items, err := s.Items(ctx, touched.ID)
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("items after sweep: %+v", items)
	}
}
