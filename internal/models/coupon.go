package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon codes are stored uppercased; lookups uppercase the input so
// matching is case-insensitive.
type Coupon struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code           string             `bson:"code" json:"code"`
	DiscountType   string             `bson:"discountType" json:"discountType"`
	DiscountValue  float64            `bson:"discountValue" json:"discountValue"`
	MinOrderAmount float64            `bson:"minOrderAmount,omitempty" json:"minOrderAmount,omitempty"`
	MaxUses        int                `bson:"maxUses,omitempty" json:"maxUses,omitempty"`
	UsedCount      int                `bson:"usedCount" json:"usedCount"`
	Active         bool               `bson:"active" json:"active"`
	ExpiresAt      *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
