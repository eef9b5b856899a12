// Package auth resolves the caller of a request from its bearer token and
// guards routes that need a signed-in user or a staff role.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// User is the authenticated caller injected into the request context.
type User struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Role  string
}

// UserFetcher loads the current state of a user so that deactivation and
// role changes take effect on the next request.
type UserFetcher interface {
	FetchUser(ctx context.Context, id primitive.ObjectID) (*User, error)
}

// ErrUserInactive is returned by a UserFetcher for disabled accounts.
var ErrUserInactive = errors.New("auth: user inactive")

type ctxKey struct{}

// CurrentUser returns the caller and whether one is present.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(ctxKey{}).(*User)
	return u, ok && u != nil
}

// WithUser returns r carrying u. Middleware and tests use it.
func WithUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, u))
}

// Middleware verifies bearer tokens.
type Middleware struct {
	tokens  *Tokens
	fetcher UserFetcher
	log     *zap.Logger
}

// NewMiddleware builds the middleware. fetcher may be nil, in which case
// the identity comes from the token claims alone.
func NewMiddleware(tokens *Tokens, fetcher UserFetcher, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, fetcher: fetcher, log: logger}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

// LoadUser puts the caller into the context when a valid access token is
// present. A missing token passes through; a bad one is rejected with 401.
func (m *Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Verify(raw, TypeAccess)
		if err != nil {
			detail := "Invalid token"
			if errors.Is(err, ErrExpiredToken) {
				detail = "Token expired"
			}
			jsonio.WriteError(w, m.log, apperr.Unauthorizedf("%s", detail))
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			jsonio.WriteError(w, m.log, apperr.Unauthorizedf("Invalid token"))
			return
		}

		u := &User{ID: id, Role: claims.Role}
		if m.fetcher != nil {
			fresh, err := m.fetcher.FetchUser(r.Context(), id)
			switch {
			case err == nil:
				u = fresh
			case errors.Is(err, ErrUserInactive):
				jsonio.WriteError(w, m.log, apperr.Unauthorizedf("Account disabled"))
				return
			default:
				jsonio.WriteError(w, m.log, apperr.Unauthorizedf("Unknown user"))
				return
			}
		}
		next.ServeHTTP(w, WithUser(r, u))
	})
}

// RequireSignedIn rejects requests without a caller with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			jsonio.WriteError(w, nil, apperr.Unauthorizedf("Not authenticated"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers whose role is not in allowed (401 when
// signed out, 403 otherwise).
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				jsonio.WriteError(w, nil, apperr.Unauthorizedf("Not authenticated"))
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				jsonio.WriteError(w, nil, apperr.Forbiddenf("Insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
