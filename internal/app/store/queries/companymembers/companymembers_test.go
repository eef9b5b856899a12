package companymembers_test

import (
	"testing"

	"github.com/dalemusser/quizmart/internal/app/store/queries/companymembers"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
)

func TestListMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	company := fixtures.CreateCompany(ctx, "Acme", owner.ID, true)
	for _, name := range []string{"Cleo", "Abe", "Bo"} {
		u := fixtures.CreateUser(ctx, name, name+"@example.com")
		fixtures.CreateMembership(ctx, company.ID, u.ID, models.StatusMember)
	}
	pending := fixtures.CreateUser(ctx, "Pat", "pat@example.com")
	fixtures.CreateMembership(ctx, company.ID, pending.ID, models.StatusPendingRequest)

	got, err := companymembers.ListMembers(ctx, db, company.ID, models.StatusMember, paging.New(1, 1))
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("Total: got %d, want 3", got.Total)
	}
	if got.Page != 2 || got.PerPage != 1 {
		t.Errorf("Page/PerPage: got %d/%d, want 2/1", got.Page, got.PerPage)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Bo Tester" {
		t.Errorf("Items: got %+v, want [Bo Tester]", got.Items)
	}

	empty, err := companymembers.ListMembers(ctx, db, company.ID, models.StatusAdmin, paging.New(0, 10))
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if empty.Total != 0 || len(empty.Items) != 0 || empty.Items == nil {
		t.Errorf("empty list: got %+v", empty)
	}
}

func TestListUserCompanies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	user := fixtures.CreateUser(ctx, "Member", "member@example.com")
	a := fixtures.CreateCompany(ctx, "Beta", owner.ID, true)
	b := fixtures.CreateCompany(ctx, "Alpha", owner.ID, true)
	c := fixtures.CreateCompany(ctx, "Gamma", owner.ID, true)
	fixtures.CreateMembership(ctx, a.ID, user.ID, models.StatusMember)
	fixtures.CreateMembership(ctx, b.ID, user.ID, models.StatusMember)
	fixtures.CreateMembership(ctx, c.ID, user.ID, models.StatusPendingInvite)

	got, err := companymembers.ListUserCompanies(ctx, db, user.ID, models.StatusMember, paging.New(0, 10))
	if err != nil {
		t.Fatalf("ListUserCompanies failed: %v", err)
	}
	if got.Total != 2 {
		t.Fatalf("Total: got %d, want 2", got.Total)
	}
	if got.Items[0].Name != "Alpha" || got.Items[1].Name != "Beta" {
		t.Errorf("names: got %q, %q", got.Items[0].Name, got.Items[1].Name)
	}
}

func TestListAvailableCompanies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	other := fixtures.CreateUser(ctx, "Other", "other@example.com")
	user := fixtures.CreateUser(ctx, "Target", "target@example.com")

	joined := fixtures.CreateCompany(ctx, "Joined", owner.ID, true)
	invited := fixtures.CreateCompany(ctx, "Invited", owner.ID, true)
	free := fixtures.CreateCompany(ctx, "Free", owner.ID, false)
	fixtures.CreateCompany(ctx, "Not Mine", other.ID, true)
	fixtures.CreateMembership(ctx, joined.ID, user.ID, models.StatusMember)
	fixtures.CreateMembership(ctx, invited.ID, user.ID, models.StatusPendingInvite)

	got, err := companymembers.ListAvailableCompanies(ctx, db, user.ID, owner.ID, paging.New(0, 10))
	if err != nil {
		t.Fatalf("ListAvailableCompanies failed: %v", err)
	}
	if got.Total != 1 || len(got.Items) != 1 || got.Items[0].ID != free.ID {
		t.Errorf("got %+v, want only %q", got.Items, free.Name)
	}
}
