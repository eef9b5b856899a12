package memberships_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/features/memberships"
	"github.com/dalemusser/quizmart/internal/app/services/membership"
	"github.com/dalemusser/quizmart/internal/app/store/queries/companymembers"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	logger := zap.NewNop()
	h := memberships.NewHandler(membership.New(db, nil, nil, logger), logger)
	return memberships.Routes(h), testutil.NewFixtures(t, db)
}

func do(t *testing.T, r chi.Router, method, target string, as *models.User) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest(method, target)
	if as != nil {
		req = testutil.WithUser(req, *as)
	}
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestInviteAcceptFlow(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	user := fx.CreateUser(ctx, "Ulla", "ulla@example.com")
	c := fx.CreateCompany(ctx, "Acme", owner.ID, true)

	rec := do(t, r, http.MethodPost, "/company/"+c.ID.Hex()+"/invite/"+user.ID.Hex(), &owner)
	rec.AssertStatus(t, http.StatusCreated)
	var m models.Membership
	rec.DecodeJSON(t, &m)
	if m.Status != models.StatusPendingInvite {
		t.Fatalf("status: got %q, want %q", m.Status, models.StatusPendingInvite)
	}

	// A second invite, or a request, for the same pair is a bad request.
	rec = do(t, r, http.MethodPost, "/company/"+c.ID.Hex()+"/invite/"+user.ID.Hex(), &owner)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertDetail(t, "User is already a member or has a pending invitation/request.")
	rec = do(t, r, http.MethodPost, "/company/"+c.ID.Hex()+"/request", &user)
	rec.AssertStatus(t, http.StatusBadRequest)

	// Only the invitee can accept.
	rec = do(t, r, http.MethodPatch, "/"+m.ID.Hex()+"/accept-invite", &owner)
	rec.AssertStatus(t, http.StatusNotFound)

	rec = do(t, r, http.MethodPatch, "/"+m.ID.Hex()+"/accept-invite", &user)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &m)
	if m.Status != models.StatusMember {
		t.Errorf("status: got %q, want %q", m.Status, models.StatusMember)
	}

	rec = do(t, r, http.MethodGet, "/company/"+c.ID.Hex()+"/user/"+user.ID.Hex(), &owner)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"member"`)

	rec = do(t, r, http.MethodPatch, "/"+m.ID.Hex()+"/add-to-admin", &owner)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"admin"`)

	rec = do(t, r, http.MethodPatch, "/"+m.ID.Hex()+"/remove-from-admin", &owner)
	rec.AssertStatus(t, http.StatusOK)

	rec = do(t, r, http.MethodDelete, "/"+m.ID.Hex()+"/leave", &user)
	rec.AssertStatus(t, http.StatusOK)

	rec = do(t, r, http.MethodGet, "/company/"+c.ID.Hex()+"/user/"+user.ID.Hex(), &owner)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"none"`)
}

func TestRequestFlow(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	asker := fx.CreateUser(ctx, "Ravi", "ravi@example.com")
	stranger := fx.CreateUser(ctx, "Stan", "stan@example.com")
	c := fx.CreateCompany(ctx, "Acme", owner.ID, true)

	rec := do(t, r, http.MethodPost, "/company/"+c.ID.Hex()+"/request", &asker)
	rec.AssertStatus(t, http.StatusCreated)
	var m models.Membership
	rec.DecodeJSON(t, &m)

	rec = do(t, r, http.MethodPatch, "/"+m.ID.Hex()+"/accept-request", &stranger)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = do(t, r, http.MethodPatch, "/"+m.ID.Hex()+"/accept-request", &owner)
	rec.AssertStatus(t, http.StatusOK)

	rec = do(t, r, http.MethodDelete, "/"+m.ID.Hex()+"/remove", &asker)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = do(t, r, http.MethodDelete, "/"+m.ID.Hex()+"/remove", &owner)
	rec.AssertStatus(t, http.StatusOK)
}

func TestRoutesRequireSignIn(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/company/"+"000000000000000000000000"+"/user/"+"000000000000000000000000", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestRequestUnknownCompany(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Ulla", "ulla@example.com")

	rec := do(t, r, http.MethodPost, "/company/64b000000000000000000001/request", &u)
	rec.AssertStatus(t, http.StatusNotFound)

	rec = do(t, r, http.MethodPost, "/company/not-an-id/request", &u)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeUserCompanies(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	user := fx.CreateUser(ctx, "Ulla", "ulla@example.com")
	other := fx.CreateUser(ctx, "Otto", "otto@example.com")
	admin := fx.CreateAdmin(ctx, "Ada", "ada@example.com")
	a := fx.CreateCompany(ctx, "Alpha", owner.ID, true)
	b := fx.CreateCompany(ctx, "Beta", owner.ID, true)
	fx.CreateMembership(ctx, a.ID, user.ID, models.StatusMember)
	fx.CreateMembership(ctx, b.ID, user.ID, models.StatusPendingInvite)

	rec := do(t, r, http.MethodGet, "/user/"+user.ID.Hex(), &user)
	rec.AssertStatus(t, http.StatusOK)
	var page paging.Envelope[companymembers.Item]
	rec.DecodeJSON(t, &page)
	if page.Total != 1 || page.Items[0].Name != "Alpha" {
		t.Errorf("member companies: got %+v, want Alpha only", page.Items)
	}

	rec = do(t, r, http.MethodGet, "/user/"+user.ID.Hex()+"?status=pending_invite", &admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Beta")

	rec = do(t, r, http.MethodGet, "/user/"+user.ID.Hex(), &other)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeAvailable(t *testing.T) {
	r, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	user := fx.CreateUser(ctx, "Ulla", "ulla@example.com")
	a := fx.CreateCompany(ctx, "Alpha", owner.ID, true)
	fx.CreateCompany(ctx, "Beta", owner.ID, true)
	fx.CreateMembership(ctx, a.ID, user.ID, models.StatusPendingRequest)

	rec := do(t, r, http.MethodGet, "/available/"+user.ID.Hex(), &owner)
	rec.AssertStatus(t, http.StatusOK)
	var page paging.Envelope[models.Company]
	rec.DecodeJSON(t, &page)
	if page.Total != 1 || page.Items[0].Name != "Beta" {
		t.Errorf("available: got %+v, want Beta only", page.Items)
	}
}
