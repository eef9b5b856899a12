package quizzes

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

// HandleCreate stores a quiz with its questions in one write.
//
// Route: POST /quizzes
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var in quiz.CreateInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create quiz")
	defer cancel()

	full, err := h.Svc.CreateQuiz(ctx, in, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, full)
}

// ServeQuiz returns the quiz with questions and options.
//
// Route: GET /quizzes/{id}
func (h *Handler) ServeQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get quiz")
	defer cancel()

	full, err := h.Svc.GetQuiz(ctx, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, full)
}

// ServeCompanyList pages through a company's quizzes, newest first.
//
// Route: GET /quizzes/company/{cid}
func (h *Handler) ServeCompanyList(w http.ResponseWriter, r *http.Request) {
	companyID, err := shared.IDParam(r, "cid")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list quizzes")
	defer cancel()

	page, err := h.Svc.ListCompanyQuizzes(ctx, companyID, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// HandleUpdate changes title or description, and replaces the question
// set when one is given.
//
// Route: PUT /quizzes/{id}
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
	var in quiz.UpdateInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update quiz")
	defer cancel()

	full, err := h.Svc.UpdateQuiz(ctx, id, in, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, full)
}

// HandleDelete removes a quiz with its questions and options.
//
// Route: DELETE /quizzes/{id}
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete quiz")
	defer cancel()

	q, err := h.Svc.DeleteQuiz(ctx, id, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, q)
}
