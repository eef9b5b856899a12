// Package storefront owns the shopper-facing extras around the catalog:
// product reviews, wishlists and discount codes.
package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/store/audit"
	discountstore "github.com/dalemusser/quizmart/internal/app/store/discounts"
	productstore "github.com/dalemusser/quizmart/internal/app/store/products"
	reviewstore "github.com/dalemusser/quizmart/internal/app/store/reviews"
	wishliststore "github.com/dalemusser/quizmart/internal/app/store/wishlists"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound  = apperr.NotFoundf("Product not found")
	ErrReviewNotFound   = apperr.NotFoundf("Review not found")
	ErrReviewExists     = apperr.Conflictf("You have already left a review for this product")
	ErrNotReviewAuthor  = apperr.Forbiddenf("You can change only your own reviews")
	ErrRating           = apperr.BadRequestf("Rating must be between 1 and 5")
	ErrNothingToUpdate  = apperr.BadRequestf("No fields to update")
	ErrWishlisted       = apperr.Conflictf("Product already exists in wishlist")
	ErrNotWishlisted    = apperr.NotFoundf("Product not found in wishlist")
	ErrWishlistEmpty    = apperr.BadRequestf("Wishlist is already empty")
	ErrDiscountNotFound = apperr.NotFoundf("Discount not found")
	ErrDiscountCode     = apperr.Conflictf("Discount with this code already exists")
	ErrDiscountInactive = apperr.BadRequestf("Discount is not active")
)

const maxCodeLen = 32

var hundred = decimal.NewFromInt(100)

type Service struct {
	products  *productstore.Store
	reviews   *reviewstore.Store
	wishlists *wishliststore.Store
	discounts *discountstore.Store
	audit     *auditlog.Logger
	log       *zap.Logger
	now       func() time.Time
}

func New(db *mongo.Database, audit *auditlog.Logger, log *zap.Logger) *Service {
	return &Service{
		products:  productstore.New(db),
		reviews:   reviewstore.New(db),
		wishlists: wishliststore.New(db),
		discounts: discountstore.New(db),
		audit:     audit,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// liveProduct loads a product shoppers can see. Inactive products read as
// not found.
func (s *Service) liveProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, productstore.ErrNotFound) || (err == nil && !p.IsActive) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, apperr.Internalf(err, "load product")
	}
	return p, nil
}

/* --------------------------------- Reviews -------------------------------- */

func validRating(n int) bool { return n >= models.MinRating && n <= models.MaxRating }

// Reviews pages through reviews, optionally for one product.
func (s *Service) Reviews(ctx context.Context, productID *primitive.ObjectID, p paging.Params) (paging.Envelope[models.Review], error) {
	page, err := s.reviews.List(ctx, productID, p)
	if err != nil {
		return page, apperr.Internalf(err, "list reviews")
	}
	return page, nil
}

func (s *Service) Review(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if errors.Is(err, reviewstore.ErrNotFound) {
		return models.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return models.Review{}, apperr.Internalf(err, "load review")
	}
	return r, nil
}

// AddReview records userID's review of an active product. A second review
// of the same product fails with ErrReviewExists.
func (s *Service) AddReview(ctx context.Context, userID, productID primitive.ObjectID, rating int, comment string) (models.Review, error) {
	if !validRating(rating) {
		return models.Review{}, ErrRating
	}
	if _, err := s.liveProduct(ctx, productID); err != nil {
		return models.Review{}, err
	}
	r, err := s.reviews.Create(ctx, models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	})
	if errors.Is(err, reviewstore.ErrExists) {
		return models.Review{}, ErrReviewExists
	}
	if err != nil {
		return models.Review{}, apperr.Internalf(err, "create review")
	}
	return r, nil
}

// UpdateReview changes the caller's own review.
func (s *Service) UpdateReview(ctx context.Context, actor *auth.User, id primitive.ObjectID, u reviewstore.Update) (models.Review, error) {
	if u.Empty() {
		return models.Review{}, ErrNothingToUpdate
	}
	if u.Rating != nil && !validRating(*u.Rating) {
		return models.Review{}, ErrRating
	}
	cur, err := s.Review(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if cur.UserID != actor.ID {
		return models.Review{}, ErrNotReviewAuthor
	}
	r, err := s.reviews.Update(ctx, id, actor.ID, u)
	if errors.Is(err, reviewstore.ErrNotFound) {
		return models.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return models.Review{}, apperr.Internalf(err, "update review")
	}
	return r, nil
}

// DeleteReview removes a review. Authors remove their own; staff may
// remove any.
func (s *Service) DeleteReview(ctx context.Context, actor *auth.User, id primitive.ObjectID) (models.Review, error) {
	cur, err := s.Review(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if cur.UserID != actor.ID && !authz.StaffRole(actor.Role) {
		return models.Review{}, ErrNotReviewAuthor
	}
	r, err := s.reviews.Delete(ctx, id)
	if errors.Is(err, reviewstore.ErrNotFound) {
		return models.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return models.Review{}, apperr.Internalf(err, "delete review")
	}
	return r, nil
}

/* -------------------------------- Wishlist -------------------------------- */

func (s *Service) Wishlist(ctx context.Context, userID primitive.ObjectID, p paging.Params) (paging.Envelope[models.WishlistItem], error) {
	page, err := s.wishlists.List(ctx, userID, p)
	if err != nil {
		return page, apperr.Internalf(err, "list wishlist")
	}
	return page, nil
}

func (s *Service) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (models.WishlistItem, error) {
	if _, err := s.liveProduct(ctx, productID); err != nil {
		return models.WishlistItem{}, err
	}
	item, err := s.wishlists.Add(ctx, userID, productID)
	if errors.Is(err, wishliststore.ErrExists) {
		return models.WishlistItem{}, ErrWishlisted
	}
	if err != nil {
		return models.WishlistItem{}, apperr.Internalf(err, "add to wishlist")
	}
	return item, nil
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := s.wishlists.Remove(ctx, userID, productID)
	if errors.Is(err, wishliststore.ErrNotFound) {
		return ErrNotWishlisted
	}
	if err != nil {
		return apperr.Internalf(err, "remove from wishlist")
	}
	return nil
}

// ClearWishlist empties the wishlist. Clearing an empty one is a
// BadRequest.
func (s *Service) ClearWishlist(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.wishlists.Clear(ctx, userID)
	if err != nil {
		return 0, apperr.Internalf(err, "clear wishlist")
	}
	if n == 0 {
		return 0, ErrWishlistEmpty
	}
	return n, nil
}

/* -------------------------------- Discounts ------------------------------- */

// DiscountPatch holds the discount fields a staff update may change.
type DiscountPatch struct {
	Code        *string
	Description *string
	Type        *models.DiscountType
	Value       *models.Money
	ValidFrom   *time.Time
	ValidTo     *time.Time
	IsActive    *bool
}

func (p DiscountPatch) Empty() bool {
	return p.Code == nil && p.Description == nil && p.Type == nil && p.Value == nil &&
		p.ValidFrom == nil && p.ValidTo == nil && p.IsActive == nil
}

// Apply returns d with the fields present in p written over it.
func (p DiscountPatch) Apply(d models.Discount) models.Discount {
	if p.Code != nil {
		d.Code = *p.Code
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.ValidFrom != nil {
		d.ValidFrom = *p.ValidFrom
	}
	if p.ValidTo != nil {
		d.ValidTo = *p.ValidTo
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
	return d
}

// validateDiscount checks a complete discount, new or merged with a patch.
func validateDiscount(d models.Discount) error {
	code := discountstore.NormalizeCode(d.Code)
	switch {
	case code == "":
		return apperr.BadRequestf("Discount code is required.")
	case len(code) > maxCodeLen:
		return apperr.BadRequestf("Discount code must be at most %d characters.", maxCodeLen)
	case !d.Type.Valid():
		return apperr.BadRequestf("Discount type must be percent or fixed.")
	case !d.Value.IsPositive():
		return apperr.BadRequestf("Discount value must be greater than zero.")
	case d.Type == models.DiscountPercent && d.Value.GreaterThan(hundred):
		return apperr.BadRequestf("A percent discount cannot exceed 100.")
	case d.ValidFrom.IsZero() || d.ValidTo.IsZero():
		return apperr.BadRequestf("valid_from and valid_to are required.")
	case !d.ValidTo.After(d.ValidFrom):
		return apperr.BadRequestf("valid_to must be after valid_from.")
	}
	return nil
}

func (s *Service) Discounts(ctx context.Context, p paging.Params) (paging.Envelope[models.Discount], error) {
	page, err := s.discounts.List(ctx, p)
	if err != nil {
		return page, apperr.Internalf(err, "list discounts")
	}
	return page, nil
}

func (s *Service) Discount(ctx context.Context, id primitive.ObjectID) (models.Discount, error) {
	d, err := s.discounts.GetByID(ctx, id)
	if errors.Is(err, discountstore.ErrNotFound) {
		return models.Discount{}, ErrDiscountNotFound
	}
	if err != nil {
		return models.Discount{}, apperr.Internalf(err, "load discount")
	}
	return d, nil
}

// DiscountByCode returns a code shoppers can redeem now. A code that is
// switched off or outside its window fails with ErrDiscountInactive.
func (s *Service) DiscountByCode(ctx context.Context, code string) (models.Discount, error) {
	d, err := s.discounts.GetByCode(ctx, code)
	if errors.Is(err, discountstore.ErrNotFound) {
		return models.Discount{}, ErrDiscountNotFound
	}
	if err != nil {
		return models.Discount{}, apperr.Internalf(err, "load discount")
	}
	if !d.Redeemable(s.now()) {
		return models.Discount{}, ErrDiscountInactive
	}
	return d, nil
}

func (s *Service) CreateDiscount(ctx context.Context, actor *auth.User, d models.Discount) (models.Discount, error) {
	if err := validateDiscount(d); err != nil {
		return models.Discount{}, err
	}
	created, err := s.discounts.Create(ctx, d)
	if errors.Is(err, discountstore.ErrDuplicateCode) {
		return models.Discount{}, ErrDiscountCode
	}
	if err != nil {
		return models.Discount{}, apperr.Internalf(err, "create discount")
	}
	s.audit.DiscountEvent(ctx, audit.EventDiscountCreated, actor.ID, created.ID, created.Code)
	s.log.Info("discount created", zap.String("code", created.Code), zap.String("actor_id", actor.ID.Hex()))
	return created, nil
}

// UpdateDiscount merges p into the stored discount and validates the
// result as a whole, so a new window is checked against the old bounds.
func (s *Service) UpdateDiscount(ctx context.Context, actor *auth.User, id primitive.ObjectID, p DiscountPatch) (models.Discount, error) {
	if p.Empty() {
		return models.Discount{}, ErrNothingToUpdate
	}
	cur, err := s.Discount(ctx, id)
	if err != nil {
		return models.Discount{}, err
	}
	next := p.Apply(cur)
	if err := validateDiscount(next); err != nil {
		return models.Discount{}, err
	}
	updated, err := s.discounts.Replace(ctx, next)
	switch {
	case errors.Is(err, discountstore.ErrDuplicateCode):
		return models.Discount{}, ErrDiscountCode
	case errors.Is(err, discountstore.ErrNotFound):
		return models.Discount{}, ErrDiscountNotFound
	case err != nil:
		return models.Discount{}, apperr.Internalf(err, "update discount")
	}
	s.audit.DiscountEvent(ctx, audit.EventDiscountUpdated, actor.ID, updated.ID, updated.Code)
	return updated, nil
}

func (s *Service) DeleteDiscount(ctx context.Context, actor *auth.User, id primitive.ObjectID) (models.Discount, error) {
	d, err := s.discounts.Delete(ctx, id)
	if errors.Is(err, discountstore.ErrNotFound) {
		return models.Discount{}, ErrDiscountNotFound
	}
	if err != nil {
		return models.Discount{}, apperr.Internalf(err, "delete discount")
	}
	s.audit.DiscountEvent(ctx, audit.EventDiscountDeleted, actor.ID, d.ID, d.Code)
	return d, nil
}
