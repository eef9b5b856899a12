package companies

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	companystore "github.com/dalemusser/quizmart/internal/app/store/companies"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Visibility  *bool   `json:"visibility"`
}

// HandleUpdate changes name, description or visibility. Owner only.
//
// Route: PUT /companies/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req updateRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	upd := companystore.Update{Visibility: req.Visibility}
	if req.Name != nil {
		name := normalize.Name(htmlsanitize.StripTags(*req.Name))
		if name == "" {
			uierrors.Write(w, h.Log, errNameRequired)
			return
		}
		upd.Name = &name
	}
	if req.Description != nil {
		desc := htmlsanitize.Sanitize(*req.Description)
		upd.Description = &desc
	}

	h.apply(w, r, id, caller.ID, upd)
}

type visibilityRequest struct {
	Visibility *bool `json:"visibility"`
}

// HandleVisibility shows or hides a company from the public listing.
//
// Route: PATCH /companies/{id}/visibility
func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req visibilityRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if req.Visibility == nil {
		uierrors.Write(w, h.Log, apperr.BadRequestf("visibility is required"))
		return
	}

	h.apply(w, r, id, caller.ID, companystore.Update{Visibility: req.Visibility})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, id, actor primitive.ObjectID, upd companystore.Update) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update company")
	defer cancel()

	if _, err := h.owned(ctx, id, actor); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	c, err := h.Companies.Update(ctx, id, upd)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "update company"))
		return
	}
	h.AuditLog.CompanyEvent(ctx, audit.EventCompanyUpdated, actor, c.ID, c.Name)
	jsonio.Write(w, http.StatusOK, c)
}
