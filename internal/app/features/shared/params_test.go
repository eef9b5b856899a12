package shared_test

import (
	"testing"

	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIDParam(t *testing.T) {
	id := primitive.NewObjectID()
	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/x"), "id", id.Hex())
	got, err := shared.IDParam(req, "id")
	if err != nil || got != id {
		t.Fatalf("IDParam: got (%v, %v), want %v", got, err, id)
	}

	req = testutil.WithChiURLParam(testutil.NewRequest("GET", "/x"), "id", "nope")
	if _, err := shared.IDParam(req, "id"); !apperr.Is(err, apperr.BadRequest) {
		t.Errorf("bad id: got %v, want BadRequest", err)
	}
}

func TestQueryID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := shared.QueryID(testutil.NewRequest("GET", "/x?quiz_id="+id.Hex()), "quiz_id")
	if err != nil || got != id {
		t.Fatalf("QueryID: got (%v, %v)", got, err)
	}
	if _, err := shared.QueryID(testutil.NewRequest("GET", "/x"), "quiz_id"); !apperr.Is(err, apperr.BadRequest) {
		t.Errorf("missing: got %v, want BadRequest", err)
	}
}

func TestOptionalID(t *testing.T) {
	got, err := shared.OptionalID("", "address_id")
	if err != nil || got != nil {
		t.Errorf("empty: got (%v, %v)", got, err)
	}
	if _, err := shared.OptionalID("zz", "address_id"); err == nil {
		t.Error("expected error for bad id")
	}
}

func TestCaller(t *testing.T) {
	if _, err := shared.Caller(testutil.NewRequest("GET", "/")); !apperr.Is(err, apperr.Unauthorized) {
		t.Errorf("no caller: got %v", err)
	}
}
