package membershipstore_test

import (
	"errors"
	"sync"
	"testing"

	membershipstore "github.com/dalemusser/quizmart/internal/app/store/memberships"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	company, user := primitive.NewObjectID(), primitive.NewObjectID()
	m, err := store.Create(ctx, company, user, models.StatusPendingInvite)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.Status != models.StatusPendingInvite {
		t.Errorf("Status: got %q, want %q", m.Status, models.StatusPendingInvite)
	}

	_, err = store.Create(ctx, company, user, models.StatusPendingRequest)
	if !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Errorf("duplicate: got %v, want ErrDuplicateMembership", err)
	}
}

func TestStore_Create_RejectsNone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, st := range []models.MembershipStatus{models.StatusNone, "owner"} {
		if _, err := store.Create(ctx, primitive.NewObjectID(), primitive.NewObjectID(), st); err == nil {
			t.Errorf("status %q: expected error", st)
		}
	}
}

func TestStore_Create_ConcurrentInvitesOneWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.EnsureIndexes(t, db)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	company, user := primitive.NewObjectID(), primitive.NewObjectID()
	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		dupes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, company, user, models.StatusPendingInvite)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, membershipstore.ErrDuplicateMembership):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || dupes != n-1 {
		t.Errorf("got %d created, %d duplicates; want 1 and %d", ok, dupes, n-1)
	}
}

func TestStore_Transition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreateMembership(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.StatusPendingRequest)

	if _, err := store.Transition(ctx, m.ID, models.StatusPendingInvite, models.StatusMember); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Errorf("wrong from-status: got %v, want ErrNotFound", err)
	}

	got, err := store.Transition(ctx, m.ID, models.StatusPendingRequest, models.StatusMember)
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.Status != models.StatusMember {
		t.Errorf("Status: got %q, want %q", got.Status, models.StatusMember)
	}
}

func TestStore_DeleteWithStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreateMembership(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.StatusMember)

	if _, err := store.DeleteWithStatus(ctx, m.ID, models.StatusAdmin); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Errorf("wrong status: got %v, want ErrNotFound", err)
	}
	if _, err := store.DeleteWithStatus(ctx, m.ID, models.StatusMember); err != nil {
		t.Fatalf("DeleteWithStatus failed: %v", err)
	}
	exists, err := store.Exists(ctx, m.CompanyID, m.UserID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("row should be gone")
	}
}
