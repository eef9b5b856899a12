package validators_test

import (
	"testing"

	"github.com/dalemusser/quizmart/internal/app/system/validators"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"users", "companies", "memberships", "quizzes", "quiz_results", "products", "carts", "orders"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestMembershipsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{"valid member", bson.M{"company_id": primitive.NewObjectID(), "user_id": primitive.NewObjectID(), "status": "member"}, false},
		{"valid pending invite", bson.M{"company_id": primitive.NewObjectID(), "user_id": primitive.NewObjectID(), "status": "pending_invite"}, false},
		{"none is never stored", bson.M{"company_id": primitive.NewObjectID(), "user_id": primitive.NewObjectID(), "status": "none"}, true},
		{"unknown status", bson.M{"company_id": primitive.NewObjectID(), "user_id": primitive.NewObjectID(), "status": "owner"}, true},
		{"missing user", bson.M{"company_id": primitive.NewObjectID(), "status": "member"}, true},
		{"string ids", bson.M{"company_id": "abc", "user_id": "def", "status": "member"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection("memberships").InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuizResultsValidator_NegativeCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("quiz_results").InsertOne(ctx, bson.M{
		"quiz_id":         primitive.NewObjectID(),
		"user_id":         primitive.NewObjectID(),
		"company_id":      primitive.NewObjectID(),
		"correct_answers": -1,
		"total_questions": 3,
	})
	if err == nil {
		t.Error("expected validation error for negative correct_answers")
	}
}

func TestOrdersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	valid := models.Order{
		ID:         primitive.NewObjectID(),
		UserID:     primitive.NewObjectID(),
		OrderRef:   "20260101120000-abc",
		Status:     models.OrderPending,
		TotalPrice: models.NewMoney(decimal.New(1999, -2)),
	}
	if _, err := db.Collection("orders").InsertOne(ctx, valid); err != nil {
		t.Errorf("insert valid order: %v", err)
	}

	_, err := db.Collection("orders").InsertOne(ctx, bson.M{
		"user_id":     primitive.NewObjectID(),
		"order_ref":   "x",
		"status":      "lost",
		"total_price": primitive.NewDecimal128(0, 0),
	})
	if err == nil {
		t.Error("expected validation error for unknown order status")
	}
}
