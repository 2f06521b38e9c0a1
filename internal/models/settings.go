package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsType keys the singleton settings document.
const SettingsType = "site_settings"

type SocialLinks struct {
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
}

type Settings struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type                  string             `bson:"type" json:"type"`
	SiteName              string             `bson:"siteName,omitempty" json:"siteName,omitempty"`
	ContactEmail          string             `bson:"contactEmail,omitempty" json:"contactEmail,omitempty"`
	ContactPhone          string             `bson:"contactPhone,omitempty" json:"contactPhone,omitempty"`
	Address               string             `bson:"address,omitempty" json:"address,omitempty"`
	Social                SocialLinks        `bson:"social,omitempty" json:"social,omitempty"`
	ShippingFee           float64            `bson:"shippingFee,omitempty" json:"shippingFee,omitempty"`
	FreeShippingThreshold float64            `bson:"freeShippingThreshold,omitempty" json:"freeShippingThreshold,omitempty"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}
