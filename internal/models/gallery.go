package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewGalleryImage is a curated storefront image, optionally sourced from
// a customer review.
type ReviewGalleryImage struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Image     string              `bson:"image" json:"image"`
	Caption   string              `bson:"caption,omitempty" json:"caption,omitempty"`
	ReviewID  *primitive.ObjectID `bson:"reviewId,omitempty" json:"reviewId,omitempty"`
	Active    bool                `bson:"active" json:"active"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
