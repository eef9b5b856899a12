// internal/app/features/catalog/handler.go
package catalog

import (
	"context"
	"errors"

	categorystore "github.com/dalemusser/quizmart/internal/app/store/categories"
	productstore "github.com/dalemusser/quizmart/internal/app/store/products"
	reviewstore "github.com/dalemusser/quizmart/internal/app/store/reviews"
	wishliststore "github.com/dalemusser/quizmart/internal/app/store/wishlists"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves products and categories. Reads are public; writes are
// for staff.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Products   *productstore.Store
	Categories *categorystore.Store
	Reviews    *reviewstore.Store
	Wishlists  *wishliststore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		Products:   productstore.New(db),
		Categories: categorystore.New(db),
		Reviews:    reviewstore.New(db),
		Wishlists:  wishliststore.New(db),
	}
}

var (
	errProductNotFound  = apperr.NotFoundf("Product not found")
	errCategoryNotFound = apperr.NotFoundf("Category not found")
	errProductSlug      = apperr.Conflictf("A product with this slug already exists")
	errCategorySlug     = apperr.Conflictf("A category with this slug already exists")
)

// requireCategory fails with BadRequest when id names no category.
func (h *Handler) requireCategory(ctx context.Context, id *primitive.ObjectID) error {
	if id == nil {
		return nil
	}
	_, err := h.Categories.GetByID(ctx, *id)
	if errors.Is(err, categorystore.ErrNotFound) {
		return apperr.BadRequestf("Unknown category")
	}
	if err != nil {
		return apperr.Internalf(err, "load category")
	}
	return nil
}
