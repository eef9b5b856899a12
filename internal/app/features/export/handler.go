// internal/app/features/export/handler.go
package export

import (
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	exportsvc "github.com/dalemusser/quizmart/internal/app/services/export"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves attempt downloads.
type Handler struct {
	Svc *exportsvc.Service
	Log *zap.Logger
}

func NewHandler(svc *exportsvc.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeQuizExport renders a user's archived attempts on one quiz. JSON is
// returned inline; CSV and XLSX come back as attachments.
//
// Route: GET /export/quiz?format=json|csv|xlsx&user_id&quiz_id
func (h *Handler) ServeQuizExport(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	format, err := exportsvc.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	userID, err := shared.QueryID(r, "user_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	quizID, err := shared.QueryID(r, "quiz_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "export quiz attempts")
	defer cancel()

	d, err := h.Svc.Prepare(ctx, caller.ID, userID, quizID, format)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", d.ContentType)
	if d.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	}
	w.WriteHeader(http.StatusOK)
	// the status is already out; a failure here can only be logged
	if err := h.Svc.Render(w, d); err != nil {
		h.Log.Warn("export write failed", zap.Error(err))
	}
}
