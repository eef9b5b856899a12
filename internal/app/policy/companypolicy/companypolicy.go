// internal/app/policy/companypolicy/companypolicy.go
package companypolicy

import (
	"context"
	"errors"

	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Capability is what an actor may do inside one company.
//
// Rules:
//   - The company owner is Owner whether or not a membership row exists.
//   - A row in status admin gives Admin; a row in status member gives Member.
//   - Pending rows and missing rows give None.
type Capability int

const (
	None Capability = iota
	Member
	Admin
	Owner
)

func (c Capability) String() string {
	switch c {
	case Owner:
		return "owner"
	case Admin:
		return "admin"
	case Member:
		return "member"
	}
	return "none"
}

// CanManage reports whether c may mutate memberships and quizzes.
func (c Capability) CanManage() bool { return c == Owner || c == Admin }

// MembershipLookup loads the row for a (company, user) pair and returns
// persist.ErrNotFound when there is none.
type MembershipLookup interface {
	Get(ctx context.Context, companyID, userID primitive.ObjectID) (models.Membership, error)
}

// ErrForbidden is returned by RequireManage.
var ErrForbidden = apperr.Forbiddenf("You do not have permission.")

// Resolve computes the actor's capability in company.
func Resolve(ctx context.Context, company models.Company, lookup MembershipLookup, actor primitive.ObjectID) (Capability, error) {
	if company.OwnerID == actor {
		return Owner, nil
	}
	m, err := lookup.Get(ctx, company.ID, actor)
	if errors.Is(err, persist.ErrNotFound) {
		return None, nil
	}
	if err != nil {
		return None, err
	}
	switch m.Status {
	case models.StatusAdmin:
		return Admin, nil
	case models.StatusMember:
		return Member, nil
	}
	return None, nil
}

// RequireManage succeeds for Owner or Admin and returns ErrForbidden otherwise.
func RequireManage(ctx context.Context, company models.Company, lookup MembershipLookup, actor primitive.ObjectID) error {
	c, err := Resolve(ctx, company, lookup, actor)
	if err != nil {
		return apperr.Internalf(err, "resolve capability")
	}
	if !c.CanManage() {
		return ErrForbidden
	}
	return nil
}
