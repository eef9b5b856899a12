package cartstore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	cartstore "github.com/dalemusser/quizmart/internal/app/store/carts"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GetOrCreate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := cartstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	if _, err := store.Get(ctx, user); !errors.Is(err, cartstore.ErrNotFound) {
		t.Fatalf("Get before create: got %v, want ErrNotFound", err)
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[primitive.ObjectID]bool{}
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := store.GetOrCreate(ctx, user)
			if err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
				return
			}
			mu.Lock()
			ids[c.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(ids) != 1 {
		t.Errorf("got %d distinct carts, want 1", len(ids))
	}
	n, err := db.Collection("carts").CountDocuments(ctx, bson.M{"user_id": user})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("stored carts: got %d, want 1", n)
	}
}

func TestStore_AddItem_MergesSameProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := cartstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cart, err := store.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	product := primitive.NewObjectID()

	if _, err := store.AddItem(ctx, cart.ID, product, 2, map[string]any{"size": "M"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	item, err := store.AddItem(ctx, cart.ID, product, 3, nil)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Errorf("Quantity: got %d, want 5", item.Quantity)
	}
	if item.SelectedOptions["size"] != "M" {
		t.Errorf("SelectedOptions: got %v, want size=M kept", item.SelectedOptions)
	}

	if _, err := store.AddItem(ctx, cart.ID, primitive.NewObjectID(), 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	items, err := store.Items(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items: got %d, want 2", len(items))
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := cartstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cart, err := store.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	a, _ := store.AddItem(ctx, cart.ID, primitive.NewObjectID(), 1, nil)
	store.AddItem(ctx, cart.ID, primitive.NewObjectID(), 1, nil)

	if _, err := store.RemoveItem(ctx, cart.ID, a.ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, err := store.RemoveItem(ctx, cart.ID, a.ID); !errors.Is(err, cartstore.ErrNotFound) {
		t.Errorf("second RemoveItem: got %v, want ErrNotFound", err)
	}

	n, err := store.Clear(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d, want 1", n)
	}
}

func TestStore_Drain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := cartstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cart, err := store.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	a, _ := store.AddItem(ctx, cart.ID, primitive.NewObjectID(), 1, nil)
	b, _ := store.AddItem(ctx, cart.ID, primitive.NewObjectID(), 1, nil)
	read, err := store.Items(ctx, cart.ID)
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}

	// after the read: b changes quantity and a new item arrives
	if _, err := store.SetQuantity(ctx, cart.ID, b.ID, 5); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	late, _ := store.AddItem(ctx, cart.ID, primitive.NewObjectID(), 1, nil)

	drained, err := store.Drain(ctx, cart.ID, read)
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(drained) != 1 || drained[0].ID != a.ID {
		t.Errorf("drained: got %+v, want only %s", drained, a.ID.Hex())
	}
	left, _ := store.Items(ctx, cart.ID)
	if len(left) != 2 {
		t.Fatalf("left: got %d items, want 2", len(left))
	}
	for _, it := range left {
		if it.ID != b.ID && it.ID != late.ID {
			t.Errorf("unexpected item left: %s", it.ID.Hex())
		}
	}

	// a second drain of the same read finds nothing of its own
	again, err := store.Drain(ctx, cart.ID, read)
	if err != nil {
		t.Fatalf("second Drain failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second Drain took %d items", len(again))
	}
}

func TestStore_DeleteIdle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := cartstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stale, err := store.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	fresh, err := store.GetOrCreate(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	for _, c := range []primitive.ObjectID{stale.ID, fresh.ID} {
		if _, err := store.AddItem(ctx, c, primitive.NewObjectID(), 1, nil); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
	}

	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	if _, err := db.Collection("carts").UpdateOne(ctx, bson.M{"_id": stale.ID}, bson.M{"$set": bson.M{"updated_at": old}}); err != nil {
		t.Fatalf("backdate cart: %v", err)
	}

	n, err := store.DeleteIdle(ctx, time.Now().UTC().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteIdle failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	if items, _ := store.Items(ctx, stale.ID); len(items) != 0 {
		t.Errorf("stale cart items left: %d", len(items))
	}
	if items, _ := store.Items(ctx, fresh.ID); len(items) != 1 {
		t.Errorf("fresh cart items: got %d, want 1", len(items))
	}

	if n, err := store.DeleteIdle(ctx, time.Now().UTC().Add(-30*24*time.Hour)); err != nil || n != 0 {
		t.Errorf("second sweep: got %d, %v", n, err)
	}
}
