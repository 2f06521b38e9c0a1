package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/models"
)

type SettingsUpdateRequest struct {
	SiteName              *string             `json:"siteName"`
	ContactEmail          *string             `json:"contactEmail"`
	ContactPhone          *string             `json:"contactPhone"`
	Address               *string             `json:"address"`
	Social                *models.SocialLinks `json:"social"`
	ShippingFee           *float64            `json:"shippingFee"`
	FreeShippingThreshold *float64            `json:"freeShippingThreshold"`
}

// GET /api/settings — the singleton site settings document; an empty
// default when nothing has been saved yet.
func GetSettings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/settings"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var settings models.Settings
		err := db.Collection("settings").FindOne(ctx, bson.M{"type": models.SettingsType}).Decode(&settings)
		if err == mongo.ErrNoDocuments {
			respondOK(c, models.Settings{Type: models.SettingsType})
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, settings)
	}
}

// PUT /api/settings — admin upsert of the singleton.
func UpdateSettings(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/settings"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		var req SettingsUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.SiteName != nil {
			update["siteName"] = *req.SiteName
		}
		if req.ContactEmail != nil {
			update["contactEmail"] = *req.ContactEmail
		}
		if req.ContactPhone != nil {
			update["contactPhone"] = *req.ContactPhone
		}
		if req.Address != nil {
			update["address"] = *req.Address
		}
		if req.Social != nil {
			update["social"] = *req.Social
		}
		if req.ShippingFee != nil {
			update["shippingFee"] = *req.ShippingFee
		}
		if req.FreeShippingThreshold != nil {
			update["freeShippingThreshold"] = *req.FreeShippingThreshold
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Settings
		err := db.Collection("settings").FindOneAndUpdate(
			ctx,
			bson.M{"type": models.SettingsType},
			bson.M{
				"$set":         update,
				"$setOnInsert": bson.M{"type": models.SettingsType},
			},
			options.FindOneAndUpdate().
				SetUpsert(true).
				SetReturnDocument(options.After),
		).Decode(&updated)

		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateSettings()
		respondOK(c, updated)
	}
}
