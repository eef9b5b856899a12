package storefront

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	storefrontsvc "github.com/dalemusser/quizmart/internal/app/services/storefront"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type discountRequest struct {
	Code        *string              `json:"code"`
	Description *string              `json:"description"`
	Type        *models.DiscountType `json:"discount_type"`
	Value       *models.Money        `json:"value"`
	ValidFrom   *time.Time           `json:"valid_from"`
	ValidTo     *time.Time           `json:"valid_to"`
	IsActive    *bool                `json:"is_active"`
}

func (req discountRequest) patch() storefrontsvc.DiscountPatch {
	p := storefrontsvc.DiscountPatch{
		Code:      req.Code,
		Type:      req.Type,
		Value:     req.Value,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		IsActive:  req.IsActive,
	}
	if req.Description != nil {
		desc := htmlsanitize.StripTags(*req.Description)
		p.Description = &desc
	}
	if p.ValidFrom != nil {
		t := p.ValidFrom.UTC()
		p.ValidFrom = &t
	}
	if p.ValidTo != nil {
		t := p.ValidTo.UTC()
		p.ValidTo = &t
	}
	return p
}

// ServeDiscountByCode returns a code the caller can redeem right now.
//
// Route: GET /discounts/code/{code}
func (h *Handler) ServeDiscountByCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get discount by code")
	defer cancel()

	d, err := h.Svc.DiscountByCode(ctx, chi.URLParam(r, "code"))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, d)
}

// Route: GET /discounts
func (h *Handler) ServeDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list discounts")
	defer cancel()

	page, err := h.Svc.Discounts(ctx, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// Route: GET /discounts/{id}
func (h *Handler) ServeDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get discount")
	defer cancel()

	d, err := h.Svc.Discount(ctx, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, d)
}

// HandleCreateDiscount adds a code. New codes are active unless the
// request says otherwise.
//
// Route: POST /discounts
func (h *Handler) HandleCreateDiscount(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req discountRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	active := true
	if req.IsActive == nil {
		req.IsActive = &active
	}
	d := req.patch().Apply(models.Discount{})

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create discount")
	defer cancel()

	created, err := h.Svc.CreateDiscount(ctx, caller, d)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, created)
}

// HandleUpdateDiscount changes the fields present in the body.
//
// Route: PATCH /discounts/{id}
func (h *Handler) HandleUpdateDiscount(w http.ResponseWriter, r *http.Request) {
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
	var req discountRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update discount")
	defer cancel()

	d, err := h.Svc.UpdateDiscount(ctx, caller, id, req.patch())
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, d)
}

// Route: DELETE /discounts/{id}
func (h *Handler) HandleDeleteDiscount(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete discount")
	defer cancel()

	d, err := h.Svc.DeleteDiscount(ctx, caller, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, d)
}
