package addressstore_test

import (
	"errors"
	"testing"

	addressstore "github.com/dalemusser/quizmart/internal/app/store/addresses"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	home, err := store.Create(ctx, models.Address{UserID: user, Line1: "1 Main St", City: "Springfield", PostalCode: "11111", Country: "US"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !home.IsDefault {
		t.Error("first address should be the default")
	}

	work, err := store.Create(ctx, models.Address{UserID: user, Line1: "9 Office Rd", City: "Shelbyville", PostalCode: "22222", Country: "US"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if work.IsDefault {
		t.Error("second address should not take the default")
	}

	if _, err := store.SetDefault(ctx, work.ID, user); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	def, err := store.Default(ctx, user)
	if err != nil || def.ID != work.ID {
		t.Errorf("Default: got %v, %v; want %v", def.ID, err, work.ID)
	}

	list, err := store.ListByUser(ctx, user)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != work.ID || list[1].IsDefault {
		t.Errorf("list order or flags wrong: %+v", list)
	}
}

func TestStore_ScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := addressstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner, other := primitive.NewObjectID(), primitive.NewObjectID()
	a, err := store.Create(ctx, models.Address{UserID: owner, Line1: "1 Main St", City: "X", PostalCode: "1", Country: "US"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.GetOwned(ctx, a.ID, other); !errors.Is(err, addressstore.ErrNotFound) {
		t.Errorf("GetOwned by other: got %v, want ErrNotFound", err)
	}
	if _, err := store.SetDefault(ctx, a.ID, other); !errors.Is(err, addressstore.ErrNotFound) {
		t.Errorf("SetDefault by other: got %v, want ErrNotFound", err)
	}
	if _, err := store.Delete(ctx, a.ID, other); !errors.Is(err, addressstore.ErrNotFound) {
		t.Errorf("Delete by other: got %v, want ErrNotFound", err)
	}
	if _, err := store.Delete(ctx, a.ID, owner); err != nil {
		t.Errorf("Delete by owner: %v", err)
	}
}
