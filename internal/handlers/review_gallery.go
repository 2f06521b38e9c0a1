package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/models"
)

type GalleryImageCreateRequest struct {
	Image    string `json:"image" binding:"required"`
	Caption  string `json:"caption"`
	ReviewID string `json:"reviewId"`
	Active   *bool  `json:"active"`
}

type GalleryImageUpdateRequest struct {
	Image   *string `json:"image"`
	Caption *string `json:"caption"`
	Active  *bool   `json:"active"`
}

// GET /api/review-gallery
func GetReviewGallery(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/review-gallery"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("reviewGallery").Find(ctx, bson.M{"active": true}, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		images := make([]models.ReviewGalleryImage, 0)
		if err := cursor.All(ctx, &images); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, images)
	}
}

// POST /api/review-gallery
func CreateGalleryImage(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/review-gallery"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		var req GalleryImageCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		var reviewID *primitive.ObjectID
		if raw := strings.TrimSpace(req.ReviewID); raw != "" {
			parsed, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid reviewId")
				return
			}
			reviewID = &parsed
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		now := time.Now()
		image := models.ReviewGalleryImage{
			Image:     req.Image,
			Caption:   strings.TrimSpace(req.Caption),
			ReviewID:  reviewID,
			Active:    active,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("reviewGallery").InsertOne(ctx, image)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		image.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateReviewGallery()
		respondCreated(c, image)
	}
}

// PUT /api/review-gallery/:id
func UpdateGalleryImage(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/review-gallery/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid image id")
			return
		}

		var req GalleryImageUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Image != nil {
			update["image"] = *req.Image
		}
		if req.Caption != nil {
			update["caption"] = strings.TrimSpace(*req.Caption)
		}
		if req.Active != nil {
			update["active"] = *req.Active
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.ReviewGalleryImage
		err = db.Collection("reviewGallery").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "image not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateReviewGallery()
		respondOK(c, updated)
	}
}

// DELETE /api/review-gallery/:id
func DeleteGalleryImage(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/review-gallery/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid image id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("reviewGallery").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "image not found")
			return
		}

		inv.RevalidateReviewGallery()
		respondMessage(c, "image deleted")
	}
}
