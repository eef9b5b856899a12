package companies

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/store/audit"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes a company with its quizzes and membership rows.
// Owner only. Dependents go first so a failure never leaves rows that
// point at a missing company.
//
// Route: DELETE /companies/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete company")
	defer cancel()

	c, err := h.owned(ctx, id, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if err := h.Quizzes.RemoveCompany(ctx, id); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if err := h.Memberships.RemoveCompany(ctx, id); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if _, err := h.Companies.Delete(ctx, id); err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "delete company"))
		return
	}

	h.AuditLog.CompanyEvent(ctx, audit.EventCompanyDeleted, caller.ID, c.ID, c.Name)
	h.Log.Info("company deleted", zap.String("company_id", id.Hex()), zap.String("actor_id", caller.ID.Hex()))
	jsonio.Write(w, http.StatusOK, c)
}
