// Package membership implements the company membership state machine.
//
// A (company, user) pair is in exactly one state. NONE is virtual: it is
// the absence of a row. Every other state is one stored row.
//
//	NONE ──invite──────────► PENDING_INVITE ──accept_invite──► MEMBER
//	NONE ──request─────────► PENDING_REQUEST ─accept_request─► MEMBER
//	PENDING_INVITE  ──cancel_invite──► NONE
//	PENDING_REQUEST ──cancel_request─► NONE
//	MEMBER ──promote_admin──► ADMIN ──demote_admin──► MEMBER
//	MEMBER ──remove_member | leave──► NONE
//
// Each transition is applied with a conditional write on the expected
// from-status, so a concurrent change surfaces as NotFound instead of a
// lost update.
package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/quizmart/internal/app/policy/companypolicy"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	membershipstore "github.com/dalemusser/quizmart/internal/app/store/memberships"
	"github.com/dalemusser/quizmart/internal/app/store/queries/companymembers"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/metrics"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrCompanyNotFound    = apperr.NotFoundf("Company not found.")
	ErrUserNotFound       = apperr.NotFoundf("User not found.")
	ErrExists             = apperr.Conflictf("User is already a member or has a pending invitation/request.")
	ErrInvitationNotFound = apperr.NotFoundf("No invitation found.")
	ErrRequestNotFound    = apperr.NotFoundf("No request found.")
	ErrMemberNotFound     = apperr.NotFoundf("No member found.")
	ErrNotAMember         = apperr.NotFoundf("You are not a member.")
	ErrNotOwner           = apperr.Forbiddenf("You are not the owner of this company.")
	ErrNotOwnerOrUser     = apperr.Forbiddenf("You are not the owner of this company or the user.")
)

// Service applies membership transitions and answers membership queries.
type Service struct {
	db        *mongo.Database
	companies *companystore.Store
	users     *userstore.Store
	rows      *membershipstore.Store
	audit     *auditlog.Logger
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func New(db *mongo.Database, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		db:        db,
		companies: companystore.New(db),
		users:     userstore.New(db),
		rows:      membershipstore.New(db),
		audit:     audit,
		metrics:   m,
		log:       log,
	}
}

func (s *Service) company(ctx context.Context, id primitive.ObjectID) (models.Company, error) {
	c, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Company{}, ErrCompanyNotFound
	}
	if err != nil {
		return models.Company{}, apperr.Internalf(err, "load company")
	}
	return c, nil
}

// row loads membership id and checks it is in status; otherwise notFound.
func (s *Service) row(ctx context.Context, id primitive.ObjectID, status models.MembershipStatus, notFound error) (models.Membership, error) {
	m, err := s.rows.GetByID(ctx, id)
	if errors.Is(err, persist.ErrNotFound) || (err == nil && m.Status != status) {
		return models.Membership{}, notFound
	}
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "load membership")
	}
	return m, nil
}

func (s *Service) isOwner(ctx context.Context, companyID, actor primitive.ObjectID) (bool, error) {
	c, err := s.company(ctx, companyID)
	if err != nil {
		return false, err
	}
	return c.OwnerID == actor, nil
}

func (s *Service) insert(ctx context.Context, companyID, userID primitive.ObjectID, status models.MembershipStatus) (models.Membership, error) {
	exists, err := s.rows.Exists(ctx, companyID, userID)
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "check membership")
	}
	if exists {
		return models.Membership{}, ErrExists
	}
	m, err := s.rows.Create(ctx, companyID, userID, status)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		return models.Membership{}, ErrExists
	}
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "create membership")
	}
	return m, nil
}

func (s *Service) transition(ctx context.Context, m models.Membership, to models.MembershipStatus, notFound error) (models.Membership, error) {
	updated, err := s.rows.Transition(ctx, m.ID, m.Status, to)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Membership{}, notFound
	}
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "update membership")
	}
	return updated, nil
}

func (s *Service) remove(ctx context.Context, m models.Membership, notFound error) (models.Membership, error) {
	deleted, err := s.rows.DeleteWithStatus(ctx, m.ID, m.Status)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Membership{}, notFound
	}
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "delete membership")
	}
	return deleted, nil
}

func (s *Service) record(ctx context.Context, transition string, actor primitive.ObjectID, m models.Membership, from, to models.MembershipStatus) {
	s.metrics.MembershipTransition(transition)
	s.audit.MembershipChanged(ctx, transition, actor, m.CompanyID, m.UserID, string(from), string(to))
	s.log.Debug("membership transition",
		zap.String("transition", transition),
		zap.String("membership_id", m.ID.Hex()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
}

/* ---------- transitions ---------- */

// Invite creates a pending invite. Only the company owner may invite.
func (s *Service) Invite(ctx context.Context, companyID, userID, actor primitive.ObjectID) (models.Membership, error) {
	c, err := s.company(ctx, companyID)
	if err != nil {
		return models.Membership{}, err
	}
	if c.OwnerID != actor {
		return models.Membership{}, ErrNotOwner
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "load user")
	}
	if !ok {
		return models.Membership{}, ErrUserNotFound
	}
	m, err := s.insert(ctx, companyID, userID, models.StatusPendingInvite)
	if err != nil {
		return models.Membership{}, err
	}
	s.record(ctx, audit.EventInviteSent, actor, m, models.StatusNone, m.Status)
	return m, nil
}

// RequestToJoin creates a pending request from the user to the company.
func (s *Service) RequestToJoin(ctx context.Context, companyID, userID primitive.ObjectID) (models.Membership, error) {
	if _, err := s.company(ctx, companyID); err != nil {
		return models.Membership{}, err
	}
	m, err := s.insert(ctx, companyID, userID, models.StatusPendingRequest)
	if err != nil {
		return models.Membership{}, err
	}
	s.record(ctx, audit.EventRequestSent, userID, m, models.StatusNone, m.Status)
	return m, nil
}

// AcceptInvite is applied by the invited user.
func (s *Service) AcceptInvite(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	m, err := s.row(ctx, id, models.StatusPendingInvite, ErrInvitationNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	if m.UserID != actor {
		return models.Membership{}, ErrInvitationNotFound
	}
	updated, err := s.transition(ctx, m, models.StatusMember, ErrInvitationNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	s.record(ctx, audit.EventInviteAccepted, actor, updated, m.Status, updated.Status)
	return updated, nil
}

// CancelInvite withdraws (owner) or declines (invited user) an invite.
func (s *Service) CancelInvite(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	m, err := s.row(ctx, id, models.StatusPendingInvite, ErrInvitationNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	owner, err := s.isOwner(ctx, m.CompanyID, actor)
	if err != nil {
		return models.Membership{}, err
	}
	if !owner && m.UserID != actor {
		return models.Membership{}, ErrNotOwnerOrUser
	}
	deleted, err := s.remove(ctx, m, ErrInvitationNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	event := audit.EventInviteCancelled
	if m.UserID == actor {
		event = audit.EventInviteDeclined
	}
	s.record(ctx, event, actor, deleted, m.Status, models.StatusNone)
	return deleted, nil
}

// AcceptRequest admits a requester. The owner or a company admin may accept.
func (s *Service) AcceptRequest(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	m, err := s.row(ctx, id, models.StatusPendingRequest, ErrRequestNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	c, err := s.company(ctx, m.CompanyID)
	if err != nil {
		return models.Membership{}, err
	}
	if err := companypolicy.RequireManage(ctx, c, s.rows, actor); err != nil {
		return models.Membership{}, err
	}
	updated, err := s.transition(ctx, m, models.StatusMember, ErrRequestNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	s.record(ctx, audit.EventRequestAccepted, actor, updated, m.Status, updated.Status)
	return updated, nil
}

// CancelRequest withdraws (requester) or declines (owner) a request.
func (s *Service) CancelRequest(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	m, err := s.row(ctx, id, models.StatusPendingRequest, ErrRequestNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	owner, err := s.isOwner(ctx, m.CompanyID, actor)
	if err != nil {
		return models.Membership{}, err
	}
	if !owner && m.UserID != actor {
		return models.Membership{}, ErrNotOwnerOrUser
	}
	deleted, err := s.remove(ctx, m, ErrRequestNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	event := audit.EventRequestCancelled
	if m.UserID != actor {
		event = audit.EventRequestDeclined
	}
	s.record(ctx, event, actor, deleted, m.Status, models.StatusNone)
	return deleted, nil
}

func (s *Service) ownerTransition(ctx context.Context, id, actor primitive.ObjectID, from, to models.MembershipStatus, event string) (models.Membership, error) {
	m, err := s.row(ctx, id, from, ErrMemberNotFound)
	if err != nil {
		return models.Membership{}, err
	}
	owner, err := s.isOwner(ctx, m.CompanyID, actor)
	if err != nil {
		return models.Membership{}, err
	}
	if !owner {
		return models.Membership{}, ErrNotOwner
	}
	var out models.Membership
	if to == models.StatusNone {
		out, err = s.remove(ctx, m, ErrMemberNotFound)
	} else {
		out, err = s.transition(ctx, m, to, ErrMemberNotFound)
	}
	if err != nil {
		return models.Membership{}, err
	}
	s.record(ctx, event, actor, out, from, to)
	return out, nil
}

// AddToAdmin promotes a member. Owner only.
func (s *Service) AddToAdmin(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	return s.ownerTransition(ctx, id, actor, models.StatusMember, models.StatusAdmin, audit.EventAdminPromoted)
}

// RemoveFromAdmin demotes an admin back to member. Owner only.
func (s *Service) RemoveFromAdmin(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	return s.ownerTransition(ctx, id, actor, models.StatusAdmin, models.StatusMember, audit.EventAdminDemoted)
}

// RemoveMember deletes a member row. Owner only.
func (s *Service) RemoveMember(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	return s.ownerTransition(ctx, id, actor, models.StatusMember, models.StatusNone, audit.EventMemberRemoved)
}

// Leave deletes the actor's own member row.
func (s *Service) Leave(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error) {
	m, err := s.row(ctx, id, models.StatusMember, ErrNotAMember)
	if err != nil {
		return models.Membership{}, err
	}
	if m.UserID != actor {
		return models.Membership{}, ErrNotAMember
	}
	deleted, err := s.remove(ctx, m, ErrNotAMember)
	if err != nil {
		return models.Membership{}, err
	}
	s.record(ctx, audit.EventMemberLeft, actor, deleted, m.Status, models.StatusNone)
	return deleted, nil
}

/* ---------- queries ---------- */

// GetMembership returns the stored row, or a synthesized row with status
// none and a zero id when the pair has no row.
func (s *Service) GetMembership(ctx context.Context, companyID, userID primitive.ObjectID) (models.Membership, error) {
	m, err := s.rows.Get(ctx, companyID, userID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Membership{CompanyID: companyID, UserID: userID, Status: models.StatusNone}, nil
	}
	if err != nil {
		return models.Membership{}, apperr.Internalf(err, "load membership")
	}
	return m, nil
}

func listStatus(status models.MembershipStatus) (models.MembershipStatus, error) {
	if status == "" {
		return models.StatusMember, nil
	}
	if !status.Valid() || status == models.StatusNone {
		return "", apperr.BadRequestf("Invalid status %q.", status)
	}
	return status, nil
}

// ListMembers pages through a company's rows in status (member by default).
// Pending lists are visible only to the owner and company admins.
func (s *Service) ListMembers(ctx context.Context, companyID primitive.ObjectID, status models.MembershipStatus, p paging.Params, actor primitive.ObjectID) (paging.Envelope[companymembers.Item], error) {
	status, err := listStatus(status)
	if err != nil {
		return paging.Envelope[companymembers.Item]{}, err
	}
	c, err := s.company(ctx, companyID)
	if err != nil {
		return paging.Envelope[companymembers.Item]{}, err
	}
	if status.Pending() {
		if err := companypolicy.RequireManage(ctx, c, s.rows, actor); err != nil {
			return paging.Envelope[companymembers.Item]{}, err
		}
	}
	out, err := companymembers.ListMembers(ctx, s.db, companyID, status, p)
	if err != nil {
		return paging.Envelope[companymembers.Item]{}, apperr.Internalf(err, "list members")
	}
	return out, nil
}

// ListUserCompanies pages through a user's rows in status, named after their companies.
func (s *Service) ListUserCompanies(ctx context.Context, userID primitive.ObjectID, status models.MembershipStatus, p paging.Params) (paging.Envelope[companymembers.Item], error) {
	status, err := listStatus(status)
	if err != nil {
		return paging.Envelope[companymembers.Item]{}, err
	}
	out, err := companymembers.ListUserCompanies(ctx, s.db, userID, status, p)
	if err != nil {
		return paging.Envelope[companymembers.Item]{}, apperr.Internalf(err, "list user companies")
	}
	return out, nil
}

// ListAvailableCompanies pages through owner's companies where userID has no row.
func (s *Service) ListAvailableCompanies(ctx context.Context, userID, owner primitive.ObjectID, p paging.Params) (paging.Envelope[models.Company], error) {
	out, err := companymembers.ListAvailableCompanies(ctx, s.db, userID, owner, p)
	if err != nil {
		return paging.Envelope[models.Company]{}, apperr.Internalf(err, "list available companies")
	}
	return out, nil
}

// Capability resolves actor's capability in a company.
func (s *Service) Capability(ctx context.Context, company models.Company, actor primitive.ObjectID) (companypolicy.Capability, error) {
	return companypolicy.Resolve(ctx, company, s.rows, actor)
}

// RequireManage fails with Forbidden unless actor is owner or admin of company.
func (s *Service) RequireManage(ctx context.Context, company models.Company, actor primitive.ObjectID) error {
	return companypolicy.RequireManage(ctx, company, s.rows, actor)
}

// RemoveCompany deletes every row of a company. Used when the company is deleted.
func (s *Service) RemoveCompany(ctx context.Context, companyID primitive.ObjectID) error {
	if _, err := s.rows.DeleteByCompany(ctx, companyID); err != nil {
		return apperr.Internalf(err, "delete company memberships")
	}
	return nil
}
