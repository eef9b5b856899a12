// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration per category.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
type Config struct {
	Auth       string
	Membership string
	Commerce   string
	Admin      string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
// A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

type requestMeta struct {
	ip        string
	userAgent string
}

type metaKey struct{}

// Middleware stashes the client address and user agent in the request
// context so services can audit without holding the *http.Request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), metaKey{}, requestMeta{
			ip:        getClientIP(r),
			userAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.CompanyID != nil {
		fields = append(fields, zap.String("company_id", event.CompanyID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryMembership:
		return l.config.Membership
	case audit.CategoryCommerce:
		return l.config.Commerce
	case audit.CategoryAdmin:
		return l.config.Admin
	}
	return "all"
}

// Log records an audit event according to the category's setting.
// A store failure is logged and swallowed: auditing never fails the
// operation being audited.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == "off" || setting == "" {
		return
	}

	if meta, ok := ctx.Value(metaKey{}).(requestMeta); ok {
		if event.IP == "" {
			event.IP = meta.ip
		}
		if event.UserAgent == "" {
			event.UserAgent = meta.userAgent
		}
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// Registered logs a self-service signup.
func (l *Logger) Registered(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventRegistered,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailed logs a failed login. userID is nil when no account matched.
func (l *Logger) LoginFailed(ctx context.Context, eventType string, userID *primitive.ObjectID, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"attempted_email": email},
	})
}

// TokenRefreshed logs a refresh-token exchange.
func (l *Logger) TokenRefreshed(ctx context.Context, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventTokenRefreshed,
		UserID:    &userID,
		Success:   true,
	})
}

// --- Membership Events ---

// MembershipChanged logs an applied membership transition. target is the
// user whose row changed; actor performed the operation.
func (l *Logger) MembershipChanged(ctx context.Context, transition string, actorID, companyID, targetID primitive.ObjectID, from, to string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryMembership,
		EventType: transition,
		CompanyID: &companyID,
		UserID:    &targetID,
		ActorID:   &actorID,
		Success:   true,
		Details: map[string]string{
			"from": from,
			"to":   to,
		},
	})
}

// --- Commerce Events ---

// OrderCreated logs a cart converted to an order.
func (l *Logger) OrderCreated(ctx context.Context, userID, orderID primitive.ObjectID, orderRef, total string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryCommerce,
		EventType: audit.EventOrderCreated,
		UserID:    &userID,
		ActorID:   &userID,
		Success:   true,
		Details: map[string]string{
			"order_id":  orderID.Hex(),
			"order_ref": orderRef,
			"total":     total,
		},
	})
}

// OrderStatusChanged logs a status update by staff.
func (l *Logger) OrderStatusChanged(ctx context.Context, actorID, orderID primitive.ObjectID, from, to string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryCommerce,
		EventType: audit.EventOrderStatusChanged,
		ActorID:   &actorID,
		Success:   true,
		Details: map[string]string{
			"order_id": orderID.Hex(),
			"from":     from,
			"to":       to,
		},
	})
}

// OrderDeleted logs an order removed by staff.
func (l *Logger) OrderDeleted(ctx context.Context, actorID, orderID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryCommerce,
		EventType: audit.EventOrderDeleted,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"order_id": orderID.Hex()},
	})
}

// DiscountEvent logs a discount code created, changed or removed by staff.
func (l *Logger) DiscountEvent(ctx context.Context, eventType string, actorID, discountID primitive.ObjectID, code string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryCommerce,
		EventType: eventType,
		ActorID:   &actorID,
		Success:   true,
		Details: map[string]string{
			"discount_id": discountID.Hex(),
			"code":        code,
		},
	})
}

// --- Admin Events ---

// CompanyEvent logs company creation, update or deletion.
func (l *Logger) CompanyEvent(ctx context.Context, eventType string, actorID, companyID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		CompanyID: &companyID,
		Success:   true,
		Details:   map[string]string{"company_name": name},
	})
}

// QuizEvent logs quiz creation or deletion.
func (l *Logger) QuizEvent(ctx context.Context, eventType string, actorID, companyID, quizID primitive.ObjectID, title string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		CompanyID: &companyID,
		Success:   true,
		Details: map[string]string{
			"quiz_id":    quizID.Hex(),
			"quiz_title": title,
		},
	})
}

// UserDeactivated logs an account disabled by staff.
func (l *Logger) UserDeactivated(ctx context.Context, actorID, targetID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeactivated,
		ActorID:   &actorID,
		UserID:    &targetID,
		Success:   true,
	})
}
