// internal/app/store/carts/cartstore.go
package cartstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store covers carts and cart_items. A user has at most one cart.
type Store struct {
	carts *persist.Collection[models.Cart]
	items *persist.Collection[models.CartItem]
}

var ErrNotFound = persist.ErrNotFound

func New(db *mongo.Database) *Store {
	return &Store{
		carts: persist.New[models.Cart](db, "carts"),
		items: persist.New[models.CartItem](db, "cart_items"),
	}
}

// Get returns the user's cart, or ErrNotFound if none was created yet.
func (s *Store) Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	return s.carts.FindOne(ctx, bson.M{"user_id": userID})
}

// GetOrCreate returns the user's cart, creating it on first use. Two racing
// creators both end up with the same cart.
func (s *Store) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	now := time.Now().UTC()
	upsert := func() (models.Cart, error) {
		var c models.Cart
		err := s.carts.Raw().FindOneAndUpdate(ctx,
			bson.M{"user_id": userID},
			bson.M{"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"user_id":    userID,
				"created_at": now,
				"updated_at": now,
			}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&c)
		return c, err
	}

	c, err := upsert()
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// lost the insert race; the winner's cart is there now
		return s.Get(ctx, userID)
	}
	return c, err
}

// Items returns the cart's items in insertion order.
func (s *Store) Items(ctx context.Context, cartID primitive.ObjectID) ([]models.CartItem, error) {
	return s.items.FindAll(ctx, bson.M{"cart_id": cartID}, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
}

// View returns the cart with its items.
func (s *Store) View(ctx context.Context, c models.Cart) (models.CartView, error) {
	items, err := s.Items(ctx, c.ID)
	if err != nil {
		return models.CartView{}, err
	}
	return models.CartView{Cart: c, Items: items}, nil
}

// AddItem adds qty of a product to the cart. A product already in the cart
// has its quantity incremented; selected options replace the old ones only
// when given.
func (s *Store) AddItem(ctx context.Context, cartID, productID primitive.ObjectID, qty int, selected map[string]any) (models.CartItem, error) {
	now := time.Now().UTC()
	onInsert := bson.M{
		"_id":        primitive.NewObjectID(),
		"cart_id":    cartID,
		"product_id": productID,
		"created_at": now,
	}
	update := bson.M{"$inc": bson.M{"quantity": qty}}
	if selected != nil {
		update["$set"] = bson.M{"selected_options": selected}
	}
	update["$setOnInsert"] = onInsert

	var item models.CartItem
	err := s.items.Raw().FindOneAndUpdate(ctx,
		bson.M{"cart_id": cartID, "product_id": productID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&item)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// concurrent first add of the same product; retry as a plain increment
		return s.items.Update(ctx, bson.M{"cart_id": cartID, "product_id": productID}, bson.M{"$inc": bson.M{"quantity": qty}})
	}
	if err != nil {
		return models.CartItem{}, err
	}
	s.touch(ctx, cartID)
	return item, nil
}

// SetQuantity sets an item's quantity.
func (s *Store) SetQuantity(ctx context.Context, cartID, itemID primitive.ObjectID, qty int) (models.CartItem, error) {
	item, err := s.items.Set(ctx, bson.M{"_id": itemID, "cart_id": cartID}, bson.M{"quantity": qty})
	if err == nil {
		s.touch(ctx, cartID)
	}
	return item, err
}

// RemoveItem deletes one item of the cart.
func (s *Store) RemoveItem(ctx context.Context, cartID, itemID primitive.ObjectID) (models.CartItem, error) {
	item, err := s.items.Delete(ctx, bson.M{"_id": itemID, "cart_id": cartID})
	if err == nil {
		s.touch(ctx, cartID)
	}
	return item, err
}

// Clear deletes every item of the cart and reports how many went.
func (s *Store) Clear(ctx context.Context, cartID primitive.ObjectID) (int64, error) {
	n, err := s.items.DeleteMany(ctx, bson.M{"cart_id": cartID})
	if err == nil {
		s.touch(ctx, cartID)
	}
	return n, err
}

// Drain deletes exactly items, each matched on id and quantity, and returns
// the ones it removed. Items added or changed since they were read stay in
// the cart, and an item a concurrent drain already took is not reported.
func (s *Store) Drain(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) ([]models.CartItem, error) {
	drained := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		got, err := s.items.Delete(ctx, bson.M{"_id": it.ID, "cart_id": cartID, "quantity": it.Quantity})
		if errors.Is(err, persist.ErrNotFound) {
			continue
		}
		if err != nil {
			return drained, err
		}
		drained = append(drained, got)
	}
	if len(drained) > 0 {
		s.touch(ctx, cartID)
	}
	return drained, nil
}

// RestoreItems re-inserts items removed by Clear or Drain.
func (s *Store) RestoreItems(ctx context.Context, items []models.CartItem) error {
	err := s.items.InsertMany(ctx, items)
	if errors.Is(err, persist.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *Store) touch(ctx context.Context, cartID primitive.ObjectID) {
	_, _ = s.carts.Raw().UpdateOne(ctx, bson.M{"_id": cartID}, bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
}

// DeleteIdle removes carts not touched since before, with their items, and
// returns how many carts went. Carts belong to users who may come back, so
// callers should pick a generous cutoff.
func (s *Store) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	idle, err := s.carts.FindAll(ctx, bson.M{"updated_at": bson.M{"$lt": before}}, nil)
	if err != nil || len(idle) == 0 {
		return 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(idle))
	for _, c := range idle {
		ids = append(ids, c.ID)
	}
	return s.sweep(ctx, ids, before)
}

// sweep deletes the carts among ids still idle at before, then the items of
// exactly those carts. A cart touched after the scan keeps its items.
func (s *Store) sweep(ctx context.Context, ids []primitive.ObjectID, before time.Time) (int64, error) {
	var (
		removed  []primitive.ObjectID
		sweepErr error
	)
	for _, id := range ids {
		_, err := s.carts.Delete(ctx, bson.M{"_id": id, "updated_at": bson.M{"$lt": before}})
		if errors.Is(err, persist.ErrNotFound) {
			continue
		}
		if err != nil {
			sweepErr = err
			break
		}
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		if _, err := s.items.DeleteMany(ctx, bson.M{"cart_id": bson.M{"$in": removed}}); err != nil && sweepErr == nil {
			sweepErr = err
		}
	}
	return int64(len(removed)), sweepErr
}
