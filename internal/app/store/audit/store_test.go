package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyA := primitive.NewObjectID()
	companyB := primitive.NewObjectID()
	now := time.Now().UTC()

	events := []audit.Event{
		{CompanyID: &companyA, Category: audit.CategoryMembership, EventType: audit.EventInviteSent, Timestamp: now.Add(-3 * time.Minute), Success: true},
		{CompanyID: &companyA, Category: audit.CategoryMembership, EventType: audit.EventInviteAccepted, Timestamp: now.Add(-2 * time.Minute), Success: true},
		{CompanyID: &companyB, Category: audit.CategoryMembership, EventType: audit.EventRequestSent, Timestamp: now.Add(-1 * time.Minute), Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Timestamp: now, Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 4},
		{"by company", audit.QueryFilter{CompanyID: &companyA}, 2},
		{"by category", audit.QueryFilter{Category: audit.CategoryMembership}, 3},
		{"by event type", audit.QueryFilter{EventType: audit.EventRequestSent}, 1},
		{"with limit", audit.QueryFilter{Limit: 2}, 2},
		{"with offset", audit.QueryFilter{Offset: 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}

	since := now.Add(-90 * time.Second)
	n, err := store.CountByFilter(ctx, audit.QueryFilter{StartTime: &since})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count since: got %d, want 2", n)
	}
}

func TestStore_Query_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_ = store.Log(ctx, audit.Event{
			Category:  audit.CategoryCommerce,
			EventType: audit.EventOrderCreated,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	got, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("events not sorted newest first at %d", i)
		}
	}
}
