package catalog

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	productstore "github.com/dalemusser/quizmart/internal/app/store/products"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type productRequest struct {
	Title       *string       `json:"title"`
	Slug        *string       `json:"slug"`
	Description *string       `json:"description"`
	BasePrice   *models.Money `json:"base_price"`
	CategoryID  *string       `json:"category_id"`
	IsActive    *bool         `json:"is_active"`
}

// toUpdate validates the request fields that are present.
func (req productRequest) toUpdate() (productstore.Update, error) {
	var u productstore.Update
	if req.Title != nil {
		title := htmlsanitize.StripTags(*req.Title)
		if title == "" {
			return u, apperr.BadRequestf("Product title is required.")
		}
		u.Title = &title
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		u.Slug = &slug
	}
	if req.Description != nil {
		desc := htmlsanitize.Sanitize(*req.Description)
		u.Description = &desc
	}
	if req.BasePrice != nil {
		if req.BasePrice.IsNegative() {
			return u, apperr.BadRequestf("Price cannot be negative.")
		}
		u.BasePrice = req.BasePrice
	}
	if req.CategoryID != nil {
		id, err := shared.OptionalID(*req.CategoryID, "category_id")
		if err != nil {
			return u, err
		}
		u.CategoryID = id
	}
	u.IsActive = req.IsActive
	return u, nil
}

// visible hides inactive products from everyone but staff.
func visible(r *http.Request, p models.Product) bool {
	return p.IsActive || authz.IsStaff(r)
}

// ServeProducts pages through the catalog. Staff may pass
// include_inactive=true; category_id narrows to one category.
//
// Route: GET /products
func (h *Handler) ServeProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := shared.OptionalID(r.URL.Query().Get("category_id"), "category_id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	f := productstore.ListFilter{
		CategoryID: categoryID,
		ActiveOnly: !(authz.IsStaff(r) && r.URL.Query().Get("include_inactive") == "true"),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list products")
	defer cancel()

	page, err := h.Products.List(ctx, f, paging.Parse(r))
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "list products"))
		return
	}
	jsonio.Write(w, http.StatusOK, page)
}

// ServeProduct returns one product.
//
// Route: GET /products/{id}
func (h *Handler) ServeProduct(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get product")
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	h.writeProduct(w, r, p, err)
}

// ServeProductBySlug returns one product by its URL slug.
//
// Route: GET /products/slug/{slug}
func (h *Handler) ServeProductBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get product by slug")
	defer cancel()

	p, err := h.Products.GetBySlug(ctx, chi.URLParam(r, "slug"))
	h.writeProduct(w, r, p, err)
}

func (h *Handler) writeProduct(w http.ResponseWriter, r *http.Request, p models.Product, err error) {
	if errors.Is(err, productstore.ErrNotFound) || (err == nil && !visible(r, p)) {
		uierrors.Write(w, h.Log, errProductNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "load product"))
		return
	}
	jsonio.Write(w, http.StatusOK, p)
}

// HandleCreateProduct adds a product. New products are active unless the
// request says otherwise; the slug defaults to the title.
//
// Route: POST /products
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	if req.Title == nil {
		uierrors.Write(w, h.Log, apperr.BadRequestf("Product title is required."))
		return
	}
	if req.BasePrice == nil {
		uierrors.Write(w, h.Log, apperr.BadRequestf("Price is required."))
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create product")
	defer cancel()

	if err := h.requireCategory(ctx, u.CategoryID); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	p := models.Product{
		Title:      *u.Title,
		BasePrice:  *u.BasePrice,
		CategoryID: u.CategoryID,
		IsActive:   true,
	}
	if u.Slug != nil {
		p.Slug = *u.Slug
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}

	created, err := h.Products.Create(ctx, p)
	if errors.Is(err, productstore.ErrDuplicateSlug) {
		uierrors.Write(w, h.Log, errProductSlug)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "create product"))
		return
	}
	h.Log.Info("product created", zap.String("product_id", created.ID.Hex()), zap.String("slug", created.Slug))
	jsonio.Write(w, http.StatusCreated, created)
}

// HandleUpdateProduct changes the fields present in the body.
//
// Route: PUT /products/{id}
func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req productRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	u, err := req.toUpdate()
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update product")
	defer cancel()

	if err := h.requireCategory(ctx, u.CategoryID); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	p, err := h.Products.Update(ctx, id, u)
	switch {
	case errors.Is(err, productstore.ErrNotFound):
		uierrors.Write(w, h.Log, errProductNotFound)
	case errors.Is(err, productstore.ErrDuplicateSlug):
		uierrors.Write(w, h.Log, errProductSlug)
	case err != nil:
		uierrors.Write(w, h.Log, apperr.Internalf(err, "update product"))
	default:
		jsonio.Write(w, http.StatusOK, p)
	}
}

// HandleDeleteProduct removes a product with its reviews and wishlist
// entries. Existing orders keep their price snapshot; carts holding it
// fail at checkout.
//
// Route: DELETE /products/{id}
func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete product")
	defer cancel()

	p, err := h.Products.Delete(ctx, id)
	if errors.Is(err, productstore.ErrNotFound) {
		uierrors.Write(w, h.Log, errProductNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "delete product"))
		return
	}
	if _, err := h.Reviews.DeleteByProduct(ctx, id); err != nil {
		h.Log.Warn("drop reviews of deleted product", zap.Error(err), zap.String("product_id", id.Hex()))
	}
	if _, err := h.Wishlists.DeleteByProduct(ctx, id); err != nil {
		h.Log.Warn("drop wishlist entries of deleted product", zap.Error(err), zap.String("product_id", id.Hex()))
	}
	jsonio.Write(w, http.StatusOK, p)
}
