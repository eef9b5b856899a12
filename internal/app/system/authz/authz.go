// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, ObjectID, and a found flag.
// If no user is present in context it returns "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID.IsZero() {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsStaff reports whether the current request's user is an admin or manager.
// Staff manage the catalog and see every order.
func IsStaff(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && StaffRole(role)
}

// StaffRole reports whether role is admin or manager.
func StaffRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.RoleAdmin, models.RoleManager:
		return true
	}
	return false
}

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// CanSeeUser reports whether the caller may read another user's profile:
// themselves or staff.
func CanSeeUser(r *http.Request, target primitive.ObjectID) bool {
	_, _, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	return uid == target || IsStaff(r)
}
