// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Staff roles (admin, manager) manage the catalog and orders;
// customers are everyone else. Company authority is not a user role: it
// comes from company ownership and membership rows.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCustomer = "customer"
)

// User is an account holder. Email is unique and stored normalized.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName      string             `bson:"first_name" json:"first_name"`
	LastName       string             `bson:"last_name" json:"last_name"`
	FullNameCI     string             `bson:"full_name_ci" json:"-"` // folded for sort
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role           string             `bson:"role" json:"role"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// DisplayName joins first and last name.
func (u User) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsStaff reports whether the user may manage the catalog and all orders.
func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// Address is a shipping destination owned by a user.
type Address struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Line1      string             `bson:"line1" json:"line1"`
	Line2      string             `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string             `bson:"city" json:"city"`
	PostalCode string             `bson:"postal_code" json:"postal_code"`
	Country    string             `bson:"country" json:"country"`
	IsDefault  bool               `bson:"is_default" json:"is_default"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
