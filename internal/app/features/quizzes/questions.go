package quizzes

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

// HandleAddQuestion appends a question and returns the whole quiz.
//
// Route: POST /quizzes/{id}/questions
func (h *Handler) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
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
	var in quiz.QuestionInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add question")
	defer cancel()

	full, err := h.Svc.AddQuestion(ctx, id, in, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, full)
}

// HandleUpdateQuestion retitles a question and replaces its options.
//
// Route: PUT /quizzes/questions/{qid}
func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	id, err := shared.IDParam(r, "qid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var in quiz.QuestionUpdate
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update question")
	defer cancel()

	full, err := h.Svc.UpdateQuestion(ctx, id, in, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, full)
}

// HandleDeleteQuestion removes a question and returns the remaining quiz.
//
// Route: DELETE /quizzes/questions/{qid}
func (h *Handler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	id, err := shared.IDParam(r, "qid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete question")
	defer cancel()

	full, err := h.Svc.DeleteQuestion(ctx, id, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, full)
}
