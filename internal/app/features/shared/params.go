// Package shared holds request helpers used by several features.
package shared

import (
	"net/http"
	"strings"

	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDParam parses the chi URL parameter name as an ObjectID.
func IDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequestf("invalid %s", name)
	}
	return id, nil
}

// QueryID parses query parameter name as an ObjectID. A missing value is
// BadRequest.
func QueryID(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return primitive.NilObjectID, apperr.BadRequestf("%s is required", name)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequestf("invalid %s", name)
	}
	return id, nil
}

// OptionalID parses a hex id from a body field; empty means nil.
func OptionalID(raw, name string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, apperr.BadRequestf("invalid %s", name)
	}
	return &id, nil
}

// Caller returns the signed-in user. Routes behind auth.RequireSignedIn
// always have one.
func Caller(r *http.Request) (*auth.User, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, apperr.Unauthorizedf("Not authenticated")
	}
	return u, nil
}
