package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses the storefront understands. PATCH /api/orders accepts any
// non-empty string, so this list is informational for clients, not enforced.
var OrderStatuses = []string{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// OrderItem captures the product at purchase time; later product edits do
// not change past orders.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
}

type ShippingAddress struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country string `bson:"country" json:"country"`
}

type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber   string              `bson:"orderNumber" json:"orderNumber"`
	UserID        *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	CustomerName  string              `bson:"customerName" json:"customerName"`
	CustomerEmail string              `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone string              `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	Shipping      ShippingAddress     `bson:"shipping" json:"shipping"`
	Items         []OrderItem         `bson:"items" json:"items"`
	Status        string              `bson:"status" json:"status"`
	Subtotal      float64             `bson:"subtotal" json:"subtotal"`
	Discount      float64             `bson:"discount,omitempty" json:"discount,omitempty"`
	CouponCode    string              `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	Total         float64             `bson:"total" json:"total"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
