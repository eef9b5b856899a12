// internal/app/store/orders/orderstore.go
package orderstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store covers orders and order_items.
type Store struct {
	orders *persist.Collection[models.Order]
	items  *persist.Collection[models.OrderItem]
}

var (
	ErrNotFound     = persist.ErrNotFound
	ErrDuplicateRef = errors.New("order_ref already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{
		orders: persist.New[models.Order](db, "orders"),
		items:  persist.New[models.OrderItem](db, "order_items"),
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts the order header. The caller supplies OrderRef.
func (s *Store) Create(ctx context.Context, o models.Order) (models.Order, error) {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.CreatedAt = now
	o.UpdatedAt = now
	created, err := s.orders.Insert(ctx, o)
	if errors.Is(err, persist.ErrDuplicate) {
		return models.Order{}, ErrDuplicateRef
	}
	return created, err
}

// InsertItems stores the items of an order, assigning ids.
func (s *Store) InsertItems(ctx context.Context, orderID primitive.ObjectID, items []models.OrderItem) ([]models.OrderItem, error) {
	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		it.ID = primitive.NewObjectID()
		it.OrderID = orderID
		out = append(out, it)
	}
	if err := s.items.InsertMany(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	return s.orders.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store) Items(ctx context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	return s.items.FindAll(ctx, bson.M{"order_id": orderID}, bson.D{{Key: "_id", Value: 1}})
}

// View returns the order joined with its items.
func (s *Store) View(ctx context.Context, o models.Order) (models.OrderView, error) {
	items, err := s.Items(ctx, o.ID)
	if err != nil {
		return models.OrderView{}, err
	}
	return models.OrderView{Order: o, Items: items}, nil
}

// ListByUser pages through a user's orders, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, p paging.Params) (paging.Envelope[models.Order], error) {
	return s.orders.FindPage(ctx, bson.M{"user_id": userID}, newestFirst, p)
}

// ListAll pages through every order, optionally filtered by status.
func (s *Store) ListAll(ctx context.Context, status models.OrderStatus, p paging.Params) (paging.Envelope[models.Order], error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return s.orders.FindPage(ctx, filter, newestFirst, p)
}

// SetStatus moves order id from one status to another. It returns
// ErrNotFound when the order is gone or no longer in from.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (models.Order, error) {
	return s.orders.Set(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"status": to, "updated_at": time.Now().UTC()},
	)
}

// Delete removes an order and its items.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	o, err := s.orders.Delete(ctx, bson.M{"_id": id})
	if err != nil {
		return models.Order{}, err
	}
	return o, s.DeleteItems(ctx, id)
}

// DeleteItems removes every item of an order.
func (s *Store) DeleteItems(ctx context.Context, orderID primitive.ObjectID) error {
	_, err := s.items.DeleteMany(ctx, bson.M{"order_id": orderID})
	return err
}

// Revenue sums total_price of orders not cancelled.
func (s *Store) Revenue(ctx context.Context) (models.Money, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.OrderCancelled}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_price"}}}},
	}
	cur, err := s.orders.Raw().Aggregate(ctx, pipe)
	if err != nil {
		return models.Money{}, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total models.Money `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return models.Money{}, err
		}
	}
	return row.Total, cur.Err()
}
