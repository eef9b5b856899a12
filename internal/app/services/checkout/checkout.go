// Package checkout owns the shopping cart and its conversion into orders.
package checkout

import (
	"context"
	"errors"
	"time"

	addressstore "github.com/dalemusser/quizmart/internal/app/store/addresses"
	cartstore "github.com/dalemusser/quizmart/internal/app/store/carts"
	orderstore "github.com/dalemusser/quizmart/internal/app/store/orders"
	productstore "github.com/dalemusser/quizmart/internal/app/store/products"
	userstore "github.com/dalemusser/quizmart/internal/app/store/users"
	"github.com/dalemusser/quizmart/internal/app/system/apperr"
	"github.com/dalemusser/quizmart/internal/app/system/auditlog"
	"github.com/dalemusser/quizmart/internal/app/system/auth"
	"github.com/dalemusser/quizmart/internal/app/system/authz"
	"github.com/dalemusser/quizmart/internal/app/system/metrics"
	"github.com/dalemusser/quizmart/internal/app/system/paging"
	"github.com/dalemusser/quizmart/internal/app/system/persist"
	"github.com/dalemusser/quizmart/internal/app/system/txn"
	"github.com/dalemusser/quizmart/internal/domain/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrNoCart             = apperr.NotFoundf("Cart not found")
	ErrEmptyCart          = apperr.BadRequestf("Cart is empty")
	ErrCartChanged        = apperr.Conflictf("Cart changed during checkout. Please try again.")
	ErrItemNotFound       = apperr.NotFoundf("Cart item not found")
	ErrProductNotFound    = apperr.NotFoundf("Product not found")
	ErrProductUnavailable = apperr.BadRequestf("Product is not available")
	ErrQuantity           = apperr.BadRequestf("Quantity must be at least 1")
	ErrOrderNotFound      = apperr.NotFoundf("Order not found")
	ErrAddressNotFound    = apperr.NotFoundf("Address not found")
	ErrInvalidStatus      = apperr.BadRequestf("Unknown order status")
	ErrStaffOnly          = apperr.Forbiddenf("You do not have permission.")
)

const refLayout = "20060102150405"

type Service struct {
	db        *mongo.Database
	carts     *cartstore.Store
	orders    *orderstore.Store
	products  *productstore.Store
	users     *userstore.Store
	addresses *addressstore.Store
	audit     *auditlog.Logger
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func New(db *mongo.Database, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Service {
	return &Service{
		db:        db,
		carts:     cartstore.New(db),
		orders:    orderstore.New(db),
		products:  productstore.New(db),
		users:     userstore.New(db),
		addresses: addressstore.New(db),
		audit:     audit,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// NewOrderRef returns a reference of the form YYYYMMDDhhmmss-<uuid>.
func NewOrderRef(t time.Time) string {
	return t.UTC().Format(refLayout) + "-" + uuid.NewString()
}

/* ---------- cart ---------- */

// GetCart returns the user's cart, creating an empty one on first use.
func (s *Service) GetCart(ctx context.Context, userID primitive.ObjectID) (models.CartView, error) {
	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "load cart")
	}
	v, err := s.carts.View(ctx, c)
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "load cart items")
	}
	return v, nil
}

// AddItem puts qty of a product in the cart. Adding a product that is
// already there increases its quantity.
func (s *Service) AddItem(ctx context.Context, userID, productID primitive.ObjectID, qty int, selected map[string]any) (models.CartView, error) {
	if qty < 1 {
		return models.CartView{}, ErrQuantity
	}
	p, err := s.products.GetByID(ctx, productID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.CartView{}, ErrProductNotFound
	}
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "load product")
	}
	if !p.IsActive {
		return models.CartView{}, ErrProductUnavailable
	}

	c, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "load cart")
	}
	if _, err := s.carts.AddItem(ctx, c.ID, productID, qty, selected); err != nil {
		return models.CartView{}, apperr.Internalf(err, "add cart item")
	}
	return s.view(ctx, c)
}

// UpdateItem sets the quantity of one cart item.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID primitive.ObjectID, qty int) (models.CartView, error) {
	if qty < 1 {
		return models.CartView{}, ErrQuantity
	}
	c, err := s.existingCart(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	_, err = s.carts.SetQuantity(ctx, c.ID, itemID, qty)
	if errors.Is(err, persist.ErrNotFound) {
		return models.CartView{}, ErrItemNotFound
	}
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "update cart item")
	}
	return s.view(ctx, c)
}

// RemoveItem drops one item from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (models.CartView, error) {
	c, err := s.existingCart(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	_, err = s.carts.RemoveItem(ctx, c.ID, itemID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.CartView{}, ErrItemNotFound
	}
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "remove cart item")
	}
	return s.view(ctx, c)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID primitive.ObjectID) (models.CartView, error) {
	c, err := s.existingCart(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	if _, err := s.carts.Clear(ctx, c.ID); err != nil {
		return models.CartView{}, apperr.Internalf(err, "clear cart")
	}
	return models.CartView{Cart: c, Items: []models.CartItem{}}, nil
}

func (s *Service) existingCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Cart{}, ErrNoCart
	}
	if err != nil {
		return models.Cart{}, apperr.Internalf(err, "load cart")
	}
	return c, nil
}

func (s *Service) view(ctx context.Context, c models.Cart) (models.CartView, error) {
	v, err := s.carts.View(ctx, c)
	if err != nil {
		return models.CartView{}, apperr.Internalf(err, "load cart items")
	}
	return v, nil
}

/* ---------- addresses ---------- */

// Addresses returns the user's shipping addresses.
func (s *Service) Addresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	list, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internalf(err, "list addresses")
	}
	return list, nil
}

// AddAddress stores a new address for the user.
func (s *Service) AddAddress(ctx context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error) {
	a.UserID = userID
	created, err := s.addresses.Create(ctx, a)
	if err != nil {
		return models.Address{}, apperr.Internalf(err, "create address")
	}
	return created, nil
}

// SetDefaultAddress makes one of the user's addresses the default.
func (s *Service) SetDefaultAddress(ctx context.Context, userID, id primitive.ObjectID) (models.Address, error) {
	a, err := s.addresses.SetDefault(ctx, id, userID)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Address{}, ErrAddressNotFound
	}
	if err != nil {
		return models.Address{}, apperr.Internalf(err, "set default address")
	}
	return a, nil
}

// DeleteAddress removes one of the user's addresses.
func (s *Service) DeleteAddress(ctx context.Context, userID, id primitive.ObjectID) error {
	_, err := s.addresses.Delete(ctx, id, userID)
	if errors.Is(err, persist.ErrNotFound) {
		return ErrAddressNotFound
	}
	if err != nil {
		return apperr.Internalf(err, "delete address")
	}
	return nil
}

/* ---------- orders ---------- */

// shippingAddress resolves the address an order ships to: the given one,
// which must belong to the user, or else the user's default if any.
func (s *Service) shippingAddress(ctx context.Context, userID primitive.ObjectID, addressID *primitive.ObjectID) (*primitive.ObjectID, error) {
	if addressID != nil {
		_, err := s.addresses.GetOwned(ctx, *addressID, userID)
		if errors.Is(err, persist.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		if err != nil {
			return nil, apperr.Internalf(err, "load address")
		}
		return addressID, nil
	}
	def, err := s.addresses.Default(ctx, userID)
	if errors.Is(err, persist.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internalf(err, "load default address")
	}
	return &def.ID, nil
}

// CreateOrderFromCart converts the user's cart into a pending order at
// current prices and empties the cart. Without addressID the user's
// default address is used, if they have one.
func (s *Service) CreateOrderFromCart(ctx context.Context, userID primitive.ObjectID, addressID *primitive.ObjectID) (models.OrderView, error) {
	c, err := s.existingCart(ctx, userID)
	if err != nil {
		return models.OrderView{}, err
	}
	addressID, err = s.shippingAddress(ctx, userID, addressID)
	if err != nil {
		return models.OrderView{}, err
	}

	var view models.OrderView
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		items, err := s.carts.Items(ctx, c.ID)
		if err != nil {
			return apperr.Internalf(err, "load cart items")
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		ids := make([]primitive.ObjectID, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		products, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return apperr.Internalf(err, "load products")
		}

		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			p, ok := products[it.ProductID]
			if !ok || !p.IsActive {
				return ErrProductUnavailable
			}
			total = total.Add(p.BasePrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
			lines = append(lines, models.OrderItem{
				ProductID:       it.ProductID,
				Quantity:        it.Quantity,
				Price:           p.BasePrice,
				SelectedOptions: it.SelectedOptions,
			})
		}

		order, err := s.orders.Create(ctx, models.Order{
			UserID:     userID,
			AddressID:  addressID,
			OrderRef:   NewOrderRef(s.now()),
			Status:     models.OrderPending,
			TotalPrice: models.NewMoney(total),
		})
		if err != nil {
			return apperr.Internalf(err, "create order")
		}
		txn.Compensate(ctx, func(ctx context.Context) error {
			_, err := s.orders.Delete(ctx, order.ID)
			return err
		})

		stored, err := s.orders.InsertItems(ctx, order.ID, lines)
		if err != nil {
			return apperr.Internalf(err, "create order items")
		}
		txn.Compensate(ctx, func(ctx context.Context) error {
			return s.orders.DeleteItems(ctx, order.ID)
		})

		// only the items priced above leave the cart; anything a concurrent
		// checkout took or changed fails this one
		drained, err := s.carts.Drain(ctx, c.ID, items)
		txn.Compensate(ctx, func(ctx context.Context) error {
			return s.carts.RestoreItems(ctx, drained)
		})
		if err != nil {
			return apperr.Internalf(err, "drain cart")
		}
		if len(drained) != len(items) {
			return ErrCartChanged
		}

		view = models.OrderView{Order: order, Items: stored}
		return nil
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return models.OrderView{}, err
		}
		return models.OrderView{}, apperr.Internalf(err, "checkout")
	}

	f, _ := view.TotalPrice.Float64()
	s.metrics.OrderCreated(f)
	s.audit.OrderCreated(ctx, userID, view.ID, view.OrderRef, view.TotalPrice.StringFixed(2))
	s.log.Info("order created",
		zap.String("order_id", view.ID.Hex()),
		zap.String("order_ref", view.OrderRef),
		zap.String("total", view.TotalPrice.String()))
	return view, nil
}

// ListOrders pages through orders. Staff see every order, optionally
// filtered by status; everyone else sees their own.
func (s *Service) ListOrders(ctx context.Context, actor *auth.User, status models.OrderStatus, p paging.Params) (paging.Envelope[models.Order], error) {
	if status != "" && !status.Valid() {
		return paging.Envelope[models.Order]{}, ErrInvalidStatus
	}
	var (
		out paging.Envelope[models.Order]
		err error
	)
	if authz.StaffRole(actor.Role) {
		out, err = s.orders.ListAll(ctx, status, p)
	} else {
		out, err = s.orders.ListByUser(ctx, actor.ID, p)
	}
	if err != nil {
		return paging.Envelope[models.Order]{}, apperr.Internalf(err, "list orders")
	}
	return out, nil
}

// GetOrder returns an order with its items. Customers only see their own
// orders; another user's order reads as not found.
func (s *Service) GetOrder(ctx context.Context, id primitive.ObjectID, actor *auth.User) (models.OrderView, error) {
	o, err := s.orders.Get(ctx, id)
	if errors.Is(err, persist.ErrNotFound) {
		return models.OrderView{}, ErrOrderNotFound
	}
	if err != nil {
		return models.OrderView{}, apperr.Internalf(err, "load order")
	}
	if o.UserID != actor.ID && !authz.StaffRole(actor.Role) {
		return models.OrderView{}, ErrOrderNotFound
	}

	v, err := s.orders.View(ctx, o)
	if err != nil {
		return models.OrderView{}, apperr.Internalf(err, "load order items")
	}
	names, err := s.users.NamesByIDs(ctx, []primitive.ObjectID{o.UserID})
	if err == nil {
		v.UserName = names[o.UserID]
	}
	return v, nil
}

// UpdateStatus moves an order along the status graph. Staff only.
func (s *Service) UpdateStatus(ctx context.Context, id primitive.ObjectID, to models.OrderStatus, actor *auth.User) (models.Order, error) {
	if !authz.StaffRole(actor.Role) {
		return models.Order{}, ErrStaffOnly
	}
	if !to.Valid() {
		return models.Order{}, ErrInvalidStatus
	}
	cur, err := s.orders.Get(ctx, id)
	if errors.Is(err, persist.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, apperr.Internalf(err, "load order")
	}
	if !cur.Status.CanTransition(to) {
		return models.Order{}, apperr.BadRequestf("Cannot change order status from %s to %s", cur.Status, to)
	}

	o, err := s.orders.SetStatus(ctx, id, cur.Status, to)
	if errors.Is(err, persist.ErrNotFound) {
		// changed underneath us
		return models.Order{}, apperr.Conflictf("Order status changed; reload and retry")
	}
	if err != nil {
		return models.Order{}, apperr.Internalf(err, "update order status")
	}
	s.audit.OrderStatusChanged(ctx, actor.ID, id, string(cur.Status), string(to))
	return o, nil
}

// DeleteOrder removes an order and its items. Staff only.
func (s *Service) DeleteOrder(ctx context.Context, id primitive.ObjectID, actor *auth.User) (models.Order, error) {
	if !authz.StaffRole(actor.Role) {
		return models.Order{}, ErrStaffOnly
	}
	var deleted models.Order
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		o, err := s.orders.Delete(ctx, id)
		deleted = o
		return err
	})
	if errors.Is(err, persist.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, apperr.Internalf(err, "delete order")
	}
	s.audit.OrderDeleted(ctx, actor.ID, id)
	return deleted, nil
}

// Revenue sums the totals of orders that were not cancelled.
func (s *Service) Revenue(ctx context.Context) (models.Money, error) {
	m, err := s.orders.Revenue(ctx)
	if err != nil {
		return models.Money{}, apperr.Internalf(err, "sum revenue")
	}
	return m, nil
}
