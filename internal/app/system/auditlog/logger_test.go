package auditlog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, primitive.NewObjectID(), "a@example.com")
	logger.MembershipChanged(ctx, audit.EventInviteSent, primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), "none", "pending_invite")
}

func TestLogger_LogOnly_WritesZapNotStore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Membership: "log"})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyID := primitive.NewObjectID()
	logger.MembershipChanged(ctx, audit.EventRequestSent, primitive.NewObjectID(), companyID, primitive.NewObjectID(), "none", "pending_request")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 zap entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventRequestSent {
		t.Errorf("event_type: got %v, want %q", fields["event_type"], audit.EventRequestSent)
	}
	if fields["company_id"] != companyID.Hex() {
		t.Errorf("company_id: got %v, want %q", fields["company_id"], companyID.Hex())
	}
	if fields["detail_to"] != "pending_request" {
		t.Errorf("detail_to: got %v", fields["detail_to"])
	}
}

func TestLogger_Off_WritesNothing(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "off"})

	logger.LoginSuccess(context.Background(), primitive.NewObjectID(), "a@example.com")
	if logs.Len() != 0 {
		t.Errorf("expected no log entries, got %d", logs.Len())
	}
}

func TestLogger_FailedEventsLogAtWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Auth: "log"})

	logger.LoginFailed(context.Background(), audit.EventLoginFailedWrongPassword, nil, "x@example.com", "wrong password")
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("level: got %v, want warn", entries[0].Level)
	}
}

func TestMiddleware_RequestMetaReachesEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Commerce: "log"})

	h := auditlog.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.OrderDeleted(r.Context(), primitive.NewObjectID(), primitive.NewObjectID())
	}))
	req := httptest.NewRequest("DELETE", "/orders/x", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if ip := entries[0].ContextMap()["ip"]; ip != "203.0.113.7" {
		t.Errorf("ip: got %v, want %q", ip, "203.0.113.7")
	}
}

func TestLogger_DB_PersistsEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})
	logger.LoginSuccess(ctx, userID, "user@example.com")

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != audit.EventLoginSuccess {
		t.Errorf("EventType: got %q, want %q", events[0].EventType, audit.EventLoginSuccess)
	}
}
