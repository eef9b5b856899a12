package companypolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/policy/companypolicy"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeLookup struct {
	status models.MembershipStatus // "" means no row
	err    error
}

func (f fakeLookup) Get(_ context.Context, companyID, userID primitive.ObjectID) (models.Membership, error) {
	if f.err != nil {
		return models.Membership{}, f.err
	}
	if f.status == "" {
		return models.Membership{}, persist.ErrNotFound
	}
	return models.Membership{CompanyID: companyID, UserID: userID, Status: f.status}, nil
}

func TestResolve(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	company := models.Company{ID: primitive.NewObjectID(), OwnerID: owner}

	tests := []struct {
		name       string
		actor      primitive.ObjectID
		status     models.MembershipStatus
		want       companypolicy.Capability
		wantManage bool
	}{
		{"owner without row", owner, "", companypolicy.Owner, true},
		{"owner with member row", owner, models.StatusMember, companypolicy.Owner, true},
		{"admin row", other, models.StatusAdmin, companypolicy.Admin, true},
		{"member row", other, models.StatusMember, companypolicy.Member, false},
		{"pending invite", other, models.StatusPendingInvite, companypolicy.None, false},
		{"pending request", other, models.StatusPendingRequest, companypolicy.None, false},
		{"no row", other, "", companypolicy.None, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := companypolicy.Resolve(context.Background(), company, fakeLookup{status: tt.status}, tt.actor)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve: got %v, want %v", got, tt.want)
			}
			if got.CanManage() != tt.wantManage {
				t.Errorf("CanManage: got %v, want %v", got.CanManage(), tt.wantManage)
			}

			err = companypolicy.RequireManage(context.Background(), company, fakeLookup{status: tt.status}, tt.actor)
			if tt.wantManage && err != nil {
				t.Errorf("RequireManage: unexpected error %v", err)
			}
			if !tt.wantManage && !apperr.Is(err, apperr.Forbidden) {
				t.Errorf("RequireManage: got %v, want Forbidden", err)
			}
		})
	}
}

func TestRequireManage_LookupErrorIsInternal(t *testing.T) {
	company := models.Company{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID()}
	err := companypolicy.RequireManage(context.Background(), company, fakeLookup{err: errors.New("boom")}, primitive.NewObjectID())
	if apperr.KindOf(err) != apperr.Internal || err == nil {
		t.Errorf("got %v, want Internal error", err)
	}
}
