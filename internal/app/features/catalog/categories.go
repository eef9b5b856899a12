package catalog

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/quizmart/internal/app/features/errors"
	"github.com/dalemusser/quizmart/internal/app/features/shared"
	categorystore "github.com/dalemusser/quizmart/internal/app/store/categories"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quizmart/internal/app/system/jsonio"
	"github.com/dalemusser/quizmart/internal/app/system/timeouts"
	"github.com/dalemusser/quizmart/internal/domain/models"
)

type categoryRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	ParentID *string `json:"parent_id"`
}

// ServeCategories lists every category ordered by name.
//
// Route: GET /categories
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list categories")
	defer cancel()

	list, err := h.Categories.List(ctx)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "list categories"))
		return
	}
	if list == nil {
		list = []models.Category{}
	}
	jsonio.Write(w, http.StatusOK, list)
}

// ServeCategory returns one category.
//
// Route: GET /categories/{id}
func (h *Handler) ServeCategory(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get category")
	defer cancel()

	c, err := h.Categories.GetByID(ctx, id)
	if errors.Is(err, categorystore.ErrNotFound) {
		uierrors.Write(w, h.Log, errCategoryNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "load category"))
		return
	}
	jsonio.Write(w, http.StatusOK, c)
}

// HandleCreateCategory adds a category, optionally under a parent.
//
// Route: POST /categories
func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var name string
	if req.Name != nil {
		name = htmlsanitize.StripTags(*req.Name)
	}
	if name == "" {
		uierrors.Write(w, h.Log, apperr.BadRequestf("Category name is required."))
		return
	}
	c := models.Category{Name: name}
	if req.Slug != nil {
		c.Slug = strings.TrimSpace(*req.Slug)
	}
	if req.ParentID != nil {
		parent, err := shared.OptionalID(*req.ParentID, "parent_id")
		if err != nil {
			uierrors.Write(w, h.Log, err)
			return
		}
		c.ParentID = parent
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create category")
	defer cancel()

	if err := h.requireCategory(ctx, c.ParentID); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	created, err := h.Categories.Create(ctx, c)
	if errors.Is(err, categorystore.ErrDuplicateSlug) {
		uierrors.Write(w, h.Log, errCategorySlug)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "create category"))
		return
	}
	jsonio.Write(w, http.StatusCreated, created)
}

// HandleUpdateCategory renames or moves a category. An empty parent_id
// moves it to the root.
//
// Route: PUT /categories/{id}
func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	var req categoryRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}

	var u categorystore.Update
	if req.Name != nil {
		name := htmlsanitize.StripTags(*req.Name)
		if name == "" {
			uierrors.Write(w, h.Log, apperr.BadRequestf("Category name is required."))
			return
		}
		u.Name = &name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		u.Slug = &slug
	}
	if req.ParentID != nil {
		parent, err := shared.OptionalID(*req.ParentID, "parent_id")
		if err != nil {
			uierrors.Write(w, h.Log, err)
			return
		}
		u.ParentID = parent
		u.ClearParent = parent == nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update category")
	defer cancel()

	c, err := h.Categories.Update(ctx, id, u)
	switch {
	case errors.Is(err, categorystore.ErrCycle):
		uierrors.Write(w, h.Log, apperr.BadRequestf("A category cannot be its own ancestor."))
	case errors.Is(err, categorystore.ErrNotFound):
		uierrors.Write(w, h.Log, errCategoryNotFound)
	case errors.Is(err, categorystore.ErrDuplicateSlug):
		uierrors.Write(w, h.Log, errCategorySlug)
	case err != nil:
		uierrors.Write(w, h.Log, apperr.Internalf(err, "update category"))
	default:
		jsonio.Write(w, http.StatusOK, c)
	}
}

// HandleDeleteCategory removes an empty category. Child categories move
// to the root.
//
// Route: DELETE /categories/{id}
func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		uierrors.Write(w, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete category")
	defer cancel()

	n, err := h.Products.CountInCategory(ctx, id)
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "count category products"))
		return
	}
	if n > 0 {
		uierrors.Write(w, h.Log, apperr.Conflictf("Category still has %d products.", n))
		return
	}
	c, err := h.Categories.Delete(ctx, id)
	if errors.Is(err, categorystore.ErrNotFound) {
		uierrors.Write(w, h.Log, errCategoryNotFound)
		return
	}
	if err != nil {
		uierrors.Write(w, h.Log, apperr.Internalf(err, "delete category"))
		return
	}
	jsonio.Write(w, http.StatusOK, c)
}
