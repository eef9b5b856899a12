package reviewstore_test

import (
	"errors"
	"testing"

	reviewstore "github.com/dalemusser/quizmart/internal/app/store/reviews"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_OnePerUserAndProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := reviewstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, product, other := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Review{UserID: user, ProductID: product, Rating: 4}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Review{UserID: user, ProductID: product, Rating: 2}); !errors.Is(err, reviewstore.ErrExists) {
		t.Errorf("second review: got %v, want ErrExists", err)
	}
	if _, err := store.Create(ctx, models.Review{UserID: user, ProductID: other, Rating: 3}); err != nil {
		t.Fatalf("Create (other product) failed: %v", err)
	}

	page, err := store.List(ctx, &product, paging.New(0, 10))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("reviews of product: got %d, want 1", page.Total)
	}
	all, err := store.List(ctx, nil, paging.New(0, 10))
	if err != nil || all.Total != 2 {
		t.Errorf("all reviews: got %d, %v; want 2", all.Total, err)
	}
}

func TestStore_UpdateScopedToAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reviewstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	r, err := store.Create(ctx, models.Review{UserID: author, ProductID: primitive.NewObjectID(), Rating: 4})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rating := 1
	if _, err := store.Update(ctx, r.ID, primitive.NewObjectID(), reviewstore.Update{Rating: &rating}); !errors.Is(err, reviewstore.ErrNotFound) {
		t.Errorf("update by stranger: got %v, want ErrNotFound", err)
	}
	got, err := store.Update(ctx, r.ID, author, reviewstore.Update{Rating: &rating})
	if err != nil || got.Rating != 1 {
		t.Errorf("update by author: got %d, %v", got.Rating, err)
	}
}
