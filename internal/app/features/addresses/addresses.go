package addresses

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

type addressRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

func clean(s string) string {
	return strings.TrimSpace(htmlsanitize.StripTags(s))
}

func (req addressRequest) toAddress() (models.Address, error) {
	a := models.Address{
		Line1:      clean(req.Line1),
		Line2:      clean(req.Line2),
		City:       clean(req.City),
		PostalCode: clean(req.PostalCode),
		Country:    strings.ToUpper(clean(req.Country)),
		IsDefault:  req.IsDefault,
	}
	switch {
	case a.Line1 == "":
		return a, apperr.BadRequestf("line1 is required")
	case a.City == "":
		return a, apperr.BadRequestf("city is required")
	case a.PostalCode == "":
		return a, apperr.BadRequestf("postal_code is required")
	case a.Country == "":
		return a, apperr.BadRequestf("country is required")
	}
	return a, nil
}

// ServeList returns the caller's addresses, default first.
//
// Route: GET /addresses
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list addresses")
	defer cancel()

	list, err := h.Svc.Addresses(ctx, caller.ID)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, list)
}

// HandleCreate adds an address. A user's first address becomes the
// default.
//
// Route: POST /addresses
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, err := shared.Caller(r)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req addressRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	a, err := req.toAddress()
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create address")
	defer cancel()

	created, err := h.Svc.AddAddress(ctx, caller.ID, a)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusCreated, created)
}

// Route: PATCH /addresses/{id}/default
func (h *Handler) HandleSetDefault(w http.ResponseWriter, r *http.Request) {
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set default address")
	defer cancel()

	a, err := h.Svc.SetDefaultAddress(ctx, caller.ID, id)
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, a)
}

// Route: DELETE /addresses/{id}
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete address")
	defer cancel()

	if err := h.Svc.DeleteAddress(ctx, caller.ID, id); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	jsonio.Write(w, http.StatusOK, jsonio.Message("Address deleted"))
}
