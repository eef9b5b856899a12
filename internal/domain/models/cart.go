// internal/domain/models/cart.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is the single live cart of a user. It never stores prices.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CartID          primitive.ObjectID `bson:"cart_id" json:"cart_id"`
	ProductID       primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	SelectedOptions map[string]any     `bson:"selected_options,omitempty" json:"selected_options,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// CartView is a cart with its items.
type CartView struct {
	Cart
	Items []CartItem `json:"items"`
}
