package companies_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/features/companies"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/app/store/queries/companymembers"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*companies.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	logger := zap.NewNop()
	al := auditlog.New(audit.New(db), logger, auditlog.Config{Admin: "db"})
	h := companies.NewHandler(db,
		membership.New(db, al, nil, logger),
		quiz.New(db, al, logger),
		al, logger)
	return h, testutil.NewFixtures(t, db)
}

func withID(r *http.Request, id string) *http.Request {
	return testutil.WithChiURLParam(r, "id", id)
}

func TestHandleCreate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/companies", owner, map[string]any{
		"name":        "  <b>Acme</b> ",
		"description": `Quizzes <script>alert(1)</script><em>daily</em>`,
	}))
	rec.AssertStatus(t, http.StatusCreated)

	var c models.Company
	rec.DecodeJSON(t, &c)
	if c.Name != "Acme" {
		t.Errorf("name: got %q, want %q", c.Name, "Acme")
	}
	if c.Description != "Quizzes <em>daily</em>" {
		t.Errorf("description: got %q", c.Description)
	}
	if c.OwnerID != owner.ID {
		t.Errorf("owner: got %s, want %s", c.OwnerID.Hex(), owner.ID.Hex())
	}
	if !c.Visibility {
		t.Error("new companies should be visible by default")
	}

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/companies", owner, map[string]any{"name": "   "}))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeList_VisibleAndOwn(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	other := fx.CreateUser(ctx, "Otto", "otto@example.com")
	fx.CreateCompany(ctx, "Alpha", owner.ID, true)
	fx.CreateCompany(ctx, "Hidden", owner.ID, false)
	fx.CreateCompany(ctx, "Beta", other.ID, true)

	tests := []struct {
		name      string
		req       *http.Request
		wantTotal int64
	}{
		{"anonymous", testutil.NewRequest(http.MethodGet, "/companies"), 2},
		{"owner sees hidden", testutil.NewAuthenticatedRequest(t, http.MethodGet, "/companies", owner, nil), 3},
		{"other", testutil.NewAuthenticatedRequest(t, http.MethodGet, "/companies", other, nil), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeList(rec, tt.req)
			rec.AssertStatus(t, http.StatusOK)

			var page paging.Envelope[models.Company]
			rec.DecodeJSON(t, &page)
			if page.Total != tt.wantTotal {
				t.Errorf("total: got %d, want %d", page.Total, tt.wantTotal)
			}
		})
	}
}

func TestServeView_Hidden(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	member := fx.CreateUser(ctx, "Mona", "mona@example.com")
	stranger := fx.CreateUser(ctx, "Stan", "stan@example.com")
	c := fx.CreateCompany(ctx, "Hidden", owner.ID, false)
	fx.CreateMembership(ctx, c.ID, member.ID, models.StatusMember)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{"owner", testutil.NewAuthenticatedRequest(t, http.MethodGet, "/", owner, nil), http.StatusOK},
		{"member", testutil.NewAuthenticatedRequest(t, http.MethodGet, "/", member, nil), http.StatusOK},
		{"stranger", testutil.NewAuthenticatedRequest(t, http.MethodGet, "/", stranger, nil), http.StatusNotFound},
		{"anonymous", testutil.NewRequest(http.MethodGet, "/"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeView(rec, withID(tt.req, c.ID.Hex()))
			rec.AssertStatus(t, tt.wantStatus)
		})
	}
}

func TestHandleUpdate_OwnerOnly(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	admin := fx.CreateUser(ctx, "Adam", "adam@example.com")
	c := fx.CreateCompany(ctx, "Acme", owner.ID, true)
	fx.CreateMembership(ctx, c.ID, admin.ID, models.StatusAdmin)

	body := map[string]any{"name": "Acme Ltd", "visibility": false}

	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodPut, "/", admin, body), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleUpdate(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodPut, "/", owner, body), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Company
	rec.DecodeJSON(t, &got)
	if got.Name != "Acme Ltd" || got.Visibility {
		t.Errorf("got name %q visibility %v; want %q false", got.Name, got.Visibility, "Acme Ltd")
	}
}

func TestHandleVisibility(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	c := fx.CreateCompany(ctx, "Acme", owner.ID, true)

	rec := testutil.NewRecorder()
	h.HandleVisibility(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodPatch, "/", owner, map[string]any{}), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.HandleVisibility(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodPatch, "/", owner, map[string]any{"visibility": false}), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	stored, err := h.Companies.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Visibility {
		t.Error("expected company to be hidden")
	}
}

func TestHandleDelete_Cascades(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	member := fx.CreateUser(ctx, "Mona", "mona@example.com")
	c := fx.CreateCompany(ctx, "Acme", owner.ID, true)
	fx.CreateMembership(ctx, c.ID, member.ID, models.StatusMember)
	fx.CreateQuiz(ctx, c.ID, owner.ID, "Onboarding", testutil.QuestionSpec{
		Title:   "Q1",
		Options: []testutil.OptionSpec{{Text: "A", Correct: true}},
	})

	rec := testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodDelete, "/", member, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodDelete, "/", owner, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	for _, coll := range []string{"companies", "memberships", "quizzes", "questions", "answer_options"} {
		filter := bson.M{"company_id": c.ID}
		if coll == "companies" {
			filter = bson.M{"_id": c.ID}
		}
		if coll == "questions" || coll == "answer_options" {
			filter = bson.M{}
		}
		n, err := h.DB.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s failed: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: %d documents left, want 0", coll, n)
		}
	}

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodDelete, "/", owner, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeMembers(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	member := fx.CreateUser(ctx, "Mona", "mona@example.com")
	asker := fx.CreateUser(ctx, "Ravi", "ravi@example.com")
	c := fx.CreateCompany(ctx, "Acme", owner.ID, true)
	fx.CreateMembership(ctx, c.ID, member.ID, models.StatusMember)
	fx.CreateMembership(ctx, c.ID, asker.ID, models.StatusPendingRequest)

	rec := testutil.NewRecorder()
	h.ServeMembers(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodGet, "/?status=member", member, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	var page paging.Envelope[companymembers.Item]
	rec.DecodeJSON(t, &page)
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("members: got total %d items %d, want 1/1", page.Total, len(page.Items))
	}
	if page.Items[0].Name != "Mona Tester" {
		t.Errorf("name: got %q, want %q", page.Items[0].Name, "Mona Tester")
	}

	rec = testutil.NewRecorder()
	h.ServeMembers(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodGet, "/?status=pending_request", member, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.ServeMembers(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodGet, "/?status=pending_request", owner, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeMembers(rec, withID(testutil.NewAuthenticatedRequest(t, http.MethodGet, "/?status=bogus", owner, nil), c.ID.Hex()))
	rec.AssertStatus(t, http.StatusBadRequest)
}
