package memberships

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// transitionFunc is the shape shared by every row-level membership operation.
type transitionFunc func(ctx context.Context, id, actor primitive.ObjectID) (models.Membership, error)

// transition adapts a service operation into a handler for
// /memberships/{id}/<op>. The row after the change (or the deleted row) is
// returned.
func (h *Handler) transition(op transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "membership transition")
		defer cancel()

		m, err := op(ctx, id, caller.ID)
		if err != nil {
			uierrors.Write(w, h.Log, err)
			return
		}
		jsonio.Write(w, http.StatusOK, m)
	}
}
