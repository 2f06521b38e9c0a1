package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Image         string             `bson:"image" json:"image"`
	Images        []string           `bson:"images" json:"images"`
	Category      string             `bson:"category" json:"category"`
	Colors        []string           `bson:"colors,omitempty" json:"colors,omitempty"`
	Badge         string             `bson:"badge,omitempty" json:"badge,omitempty"`
	Stock         int                `bson:"stock" json:"stock"`
	Featured      bool               `bson:"featured" json:"featured"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
