// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MembershipStatus is the lifecycle state of a (company, user) pair.
type MembershipStatus string

// StatusNone is never stored. A missing row reads as StatusNone.
const (
	StatusNone           MembershipStatus = "none"
	StatusPendingInvite  MembershipStatus = "pending_invite"
	StatusPendingRequest MembershipStatus = "pending_request"
	StatusMember         MembershipStatus = "member"
	StatusAdmin          MembershipStatus = "admin"
)

// Valid reports whether s is one of the known statuses.
func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusNone, StatusPendingInvite, StatusPendingRequest, StatusMember, StatusAdmin:
		return true
	}
	return false
}

// Pending reports whether s is an unanswered invite or request.
func (s MembershipStatus) Pending() bool {
	return s == StatusPendingInvite || s == StatusPendingRequest
}

// Membership is the single row joining a user to a company.
// Exactly one document per (company_id, user_id).
type Membership struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID `bson:"company_id" json:"company_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    MembershipStatus   `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
