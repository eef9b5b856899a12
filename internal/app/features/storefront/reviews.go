package storefront

import (
	"net/http"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	reviewstore "github.com/dalemusser/quizmart/internal/app/store/reviews"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
)

type reviewRequest struct {
	ProductID string  `json:"product_id"`
	Rating    *int    `json:"rating"`
	Comment   *string `json:"comment"`
}

// ServeReviews pages through reviews, newest first. product_id narrows to
// one product.
//
// Route: GET /reviews
func (h *Handler) ServeReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := shared.OptionalID(r.URL.Query().Get("product_id"), "product_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list reviews")
	defer cancel()

	page, err := h.Svc.Reviews(ctx, productID, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// Route: GET /reviews/{id}
func (h *Handler) ServeReview(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get review")
	defer cancel()

	rv, err := h.Svc.Review(ctx, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, rv)
}

// HandleCreateReview records the caller's review of a product.
//
// Route: POST /reviews
func (h *Handler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req reviewRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	productID, err := shared.OptionalID(req.ProductID, "product_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if productID == nil || req.Rating == nil {
		uierrors.Write(w, h.Log, apperr.BadRequestf("product_id and rating are required"))
		return
	}
	var comment string
	if req.Comment != nil {
		comment = htmlsanitize.StripTags(*req.Comment)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create review")
	defer cancel()

	rv, err := h.Svc.AddReview(ctx, caller.ID, *productID, *req.Rating, comment)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, rv)
}

// HandleUpdateReview changes the caller's own review.
//
// Route: PATCH /reviews/{id}
func (h *Handler) HandleUpdateReview(w http.ResponseWriter, r *http.Request) {
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
	var req reviewRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	u := reviewstore.Update{Rating: req.Rating}
	if req.Comment != nil {
		c := htmlsanitize.StripTags(*req.Comment)
		u.Comment = &c
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update review")
	defer cancel()

	rv, err := h.Svc.UpdateReview(ctx, caller, id, u)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, rv)
}

// HandleDeleteReview removes a review. Staff may remove anyone's.
//
// Route: DELETE /reviews/{id}
func (h *Handler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete review")
	defer cancel()

	rv, err := h.Svc.DeleteReview(ctx, caller, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, rv)
}
