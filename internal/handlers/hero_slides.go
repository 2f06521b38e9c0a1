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

type HeroSlideCreateRequest struct {
	Title    string `json:"title" binding:"required"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image" binding:"required"`
	Link     string `json:"link"`
	Order    int    `json:"order"`
	Active   *bool  `json:"active"`
}

type HeroSlideUpdateRequest struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Image    *string `json:"image"`
	Link     *string `json:"link"`
	Order    *int    `json:"order"`
	Active   *bool   `json:"active"`
}

// GET /api/hero-slides — public callers see active slides in display order;
// ?all=true lets the admin panel list everything.
func GetHeroSlides(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/hero-slides"
		defer handlePanic(c, route)

		filter := bson.M{"active": true}
		if strings.EqualFold(c.Query("all"), "true") {
			if _, denial := auth.RequireAdmin(c, secret); denial != nil {
				denial.Write(c)
				return
			}
			filter = bson.M{}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
		cursor, err := db.Collection("hero_slides").Find(ctx, filter, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		slides := make([]models.HeroSlide, 0)
		if err := cursor.All(ctx, &slides); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, slides)
	}
}

// POST /api/hero-slides
func CreateHeroSlide(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/hero-slides"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		var req HeroSlideCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		now := time.Now()
		slide := models.HeroSlide{
			Title:     strings.TrimSpace(req.Title),
			Subtitle:  strings.TrimSpace(req.Subtitle),
			Image:     req.Image,
			Link:      strings.TrimSpace(req.Link),
			Order:     req.Order,
			Active:    active,
			CreatedAt: now,
			UpdatedAt: now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("hero_slides").InsertOne(ctx, slide)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		slide.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateHeroSlides()
		respondCreated(c, slide)
	}
}

// PUT /api/hero-slides/:id
func UpdateHeroSlide(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/hero-slides/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid slide id")
			return
		}

		var req HeroSlideUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				respondError(c, http.StatusBadRequest, route, "title cannot be empty")
				return
			}
			update["title"] = title
		}
		if req.Subtitle != nil {
			update["subtitle"] = strings.TrimSpace(*req.Subtitle)
		}
		if req.Image != nil {
			update["image"] = *req.Image
		}
		if req.Link != nil {
			update["link"] = strings.TrimSpace(*req.Link)
		}
		if req.Order != nil {
			update["order"] = *req.Order
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

		var updated models.HeroSlide
		err = db.Collection("hero_slides").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "slide not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateHeroSlides()
		respondOK(c, updated)
	}
}

// DELETE /api/hero-slides/:id
func DeleteHeroSlide(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/hero-slides/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid slide id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("hero_slides").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "slide not found")
			return
		}

		inv.RevalidateHeroSlides()
		respondMessage(c, "slide deleted")
	}
}
