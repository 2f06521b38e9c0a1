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

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}

// GET /api/categories
func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("categories").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, categories)
	}
}

// GET /api/categories/:id
func GetCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var category models.Category
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, category)
	}
}

// POST /api/categories
func CreateCategory(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/categories"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"name": name})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, route, "category already exists")
			return
		}

		category := models.Category{
			Name:        name,
			Slug:        slugify(name),
			Image:       strings.TrimSpace(req.Image),
			Description: strings.TrimSpace(req.Description),
			CreatedAt:   time.Now(),
		}

		result, err := db.Collection("categories").InsertOne(ctx, category)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		category.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateCategories()
		respondCreated(c, category)
	}
}

// PUT /api/categories/:id
func UpdateCategory(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/categories/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
			update["slug"] = slugify(name)
		}
		if req.Image != nil {
			update["image"] = *req.Image
		}
		if req.Description != nil {
			update["description"] = *req.Description
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Category
		err = db.Collection("categories").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateCategories()
		respondOK(c, updated)
	}
}

// DELETE /api/categories/:id
func DeleteCategory(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/categories/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "category not found")
			return
		}

		inv.RevalidateCategories()
		respondMessage(c, "category deleted")
	}
}
