package companies

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/normalize"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.uber.org/zap"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  *bool  `json:"visibility"`
}

// HandleCreate creates a company owned by the caller. Companies are
// visible unless the request says otherwise.
//
// Route: POST /companies
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req createRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	name := normalize.Name(htmlsanitize.StripTags(req.Name))
	if name == "" {
		uierrors.Write(w, h.Log, errNameRequired)
		return
	}
	visible := true
	if req.Visibility != nil {
		visible = *req.Visibility
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create company")
	defer cancel()

	c, err := h.Companies.Create(ctx, models.Company{
		Name:        name,
		Description: htmlsanitize.Sanitize(req.Description),
		Visibility:  visible,
		OwnerID:     caller.ID,
	})
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "create company"))
		return
	}

	h.AuditLog.CompanyEvent(ctx, audit.EventCompanyCreated, caller.ID, c.ID, c.Name)
	h.Log.Info("company created", zap.String("company_id", c.ID.Hex()), zap.String("owner_id", caller.ID.Hex()))
	jsonio.Write(w, http.StatusCreated, c)
}
