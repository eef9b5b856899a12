package admin

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// eventItem is an audit event with display names resolved.
type eventItem struct {
	audit.Event
	ActorName   string `json:"actor_name,omitempty"`
	UserName    string `json:"user_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// parseFilter reads category, event_type, user_id, company_id, start_date
// and end_date. Dates are YYYY-MM-DD in UTC; end_date covers its whole day.
func parseFilter(r *http.Request, p paging.Params) (audit.QueryFilter, error) {
	q := r.URL.Query()
	f := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     p.Limit,
		Offset:    p.Skip,
	}

	var err error
	if f.UserID, err = shared.OptionalID(q.Get("user_id"), "user_id"); err != nil {
		return f, err
	}
	if f.CompanyID, err = shared.OptionalID(q.Get("company_id"), "company_id"); err != nil {
		return f, err
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, apperr.BadRequestf("start_date must be YYYY-MM-DD")
		}
		f.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, apperr.BadRequestf("end_date must be YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	}
	return f, nil
}

// ServeAudit pages through the audit trail, newest first.
//
// Route: GET /admin/audit
func (h *Handler) ServeAudit(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter, err := parseFilter(r, p)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "query audit events"))
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "count audit events"))
		return
	}

	userSet := map[primitive.ObjectID]struct{}{}
	companySet := map[primitive.ObjectID]struct{}{}
	for _, e := range events {
		if e.ActorID != nil {
			userSet[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			userSet[*e.UserID] = struct{}{}
		}
		if e.CompanyID != nil {
			companySet[*e.CompanyID] = struct{}{}
		}
	}

	// Names are a convenience; a lookup failure leaves them blank.
	userNames, err := h.Users.NamesByIDs(ctx, keys(userSet))
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
	}
	companyNames, err := h.Companies.NamesByIDs(ctx, keys(companySet))
	if err != nil {
		h.Log.Warn("failed to fetch company names for audit log", zap.Error(err))
	}

	items := make([]eventItem, 0, len(events))
	for _, e := range events {
		it := eventItem{Event: e}
		if e.ActorID != nil {
			it.ActorName = userNames[*e.ActorID]
		}
		if e.UserID != nil {
			it.UserName = userNames[*e.UserID]
		}
		if e.CompanyID != nil {
			it.CompanyName = companyNames[*e.CompanyID]
		}
		items = append(items, it)
	}
	jsonio.Write(w, http.StatusOK, paging.Wrap(items, total, p))
}

func keys(set map[primitive.ObjectID]struct{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
