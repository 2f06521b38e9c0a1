package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is purchase-verified: the (userId, productId, orderId) triple is
// unique and the order must be a delivered one owned by the reviewer.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Comment   string             `bson:"comment" json:"comment"`
	Images    []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewSummary carries aggregate stats returned alongside review lists.
type ReviewSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalCount    int64   `json:"totalCount"`
}
