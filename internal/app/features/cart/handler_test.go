package cart_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/features/cart"
	"github.com/dalemusser/quizmart/internal/app/services/checkout"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	logger := zap.NewNop()
	svc := checkout.New(db, nil, nil, logger)
	return cart.Routes(cart.NewHandler(svc, logger)), testutil.NewFixtures(t, db)
}

func send(t *testing.T, r chi.Router, method, target string, as models.User, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest(t, method, target, as, body))
	return rec
}

func TestCartFlow(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	buyer := fx.CreateUser(ctx, "Bea", "bea@example.com")
	lamp := fx.CreateProduct(ctx, "Lamp", "20.00")
	bulb := fx.CreateProduct(ctx, "Bulb", "2.50")

	rec := send(t, r, http.MethodGet, "/", buyer, nil)
	rec.AssertStatus(t, http.StatusOK)

	rec = send(t, r, http.MethodPost, "/items", buyer, map[string]any{"product_id": lamp.ID.Hex()})
	rec.AssertStatus(t, http.StatusCreated)
	rec = send(t, r, http.MethodPost, "/items", buyer, map[string]any{
		"product_id": bulb.ID.Hex(), "quantity": 2, "selected_options": map[string]any{"watt": 60},
	})
	rec.AssertStatus(t, http.StatusCreated)

	var v models.CartView
	rec.DecodeJSON(t, &v)
	if len(v.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(v.Items))
	}
	var bulbItem primitive.ObjectID
	for _, it := range v.Items {
		if it.ProductID == bulb.ID {
			bulbItem = it.ID
		}
	}

	rec = send(t, r, http.MethodPatch, "/items/"+bulbItem.Hex(), buyer, map[string]any{"quantity": 4})
	rec.AssertStatus(t, http.StatusOK)

	rec = send(t, r, http.MethodPost, "/checkout", buyer, nil)
	rec.AssertStatus(t, http.StatusCreated)
	var order models.OrderView
	rec.DecodeJSON(t, &order)
	if got := order.TotalPrice.StringFixed(2); got != "30.00" {
		t.Errorf("total: got %s, want 30.00", got)
	}
	if order.Status != models.OrderPending {
		t.Errorf("status: got %q", order.Status)
	}

	rec = send(t, r, http.MethodGet, "/", buyer, nil)
	rec.DecodeJSON(t, &v)
	if len(v.Items) != 0 {
		t.Errorf("cart after checkout: got %d items", len(v.Items))
	}

	rec = send(t, r, http.MethodPost, "/checkout", buyer, nil)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertDetail(t, "Cart is empty")
}

func TestCartErrors(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	buyer := fx.CreateUser(ctx, "Bea", "bea@example.com")
	p := fx.CreateProduct(ctx, "Lamp", "20.00")

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
	}{
		{"missing product", http.MethodPost, "/items", map[string]any{}, http.StatusBadRequest},
		{"bad product id", http.MethodPost, "/items", map[string]any{"product_id": "nope"}, http.StatusBadRequest},
		{"unknown product", http.MethodPost, "/items", map[string]any{"product_id": primitive.NewObjectID().Hex()}, http.StatusNotFound},
		{"zero quantity", http.MethodPost, "/items", map[string]any{"product_id": p.ID.Hex(), "quantity": 0}, http.StatusBadRequest},
		{"clear without cart", http.MethodDelete, "/", nil, http.StatusNotFound},
		{"bad address", http.MethodPost, "/checkout", map[string]any{"address_id": "zz"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, r, tt.method, tt.target, buyer, tt.body)
			rec.AssertStatus(t, tt.status)
		})
	}
}

func TestCartRequiresSignIn(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
