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

/* =======================
   REQUEST DTOs
======================= */

type ProductCreateRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"required"`
	OriginalPrice float64  `json:"originalPrice"`
	Image         string   `json:"image" binding:"required"`
	Images        []string `json:"images"`
	Category      string   `json:"category" binding:"required"`
	Colors        []string `json:"colors"`
	Badge         string   `json:"badge"`
	Stock         *int     `json:"stock"`
	Featured      bool     `json:"featured"`
}

type ProductUpdateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price"`
	OriginalPrice *float64  `json:"originalPrice"`
	Image         *string   `json:"image"`
	Images        *[]string `json:"images"`
	Category      *string   `json:"category"`
	Colors        *[]string `json:"colors"`
	Badge         *string   `json:"badge"`
	Stock         *int      `json:"stock"`
	Featured      *bool     `json:"featured"`
}

/* =======================
   PUBLIC READS
======================= */

// GET /api/products
func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		limit, skip, err := parseLimitSkip(c.Query("limit"), c.Query("skip"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}
		if featured := strings.TrimSpace(c.Query("featured")); featured != "" {
			filter["featured"] = strings.EqualFold(featured, "true")
		}
		if badge := strings.TrimSpace(c.Query("badge")); badge != "" {
			filter["badge"] = badge
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("allProducts").CountDocuments(ctx, filter)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		opts := options.Find().
			SetSkip(skip).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("allProducts").Find(ctx, filter, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondList(c, products, total, limit, skip, len(products))
	}
}

// GET /api/products/:id
func GetProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("allProducts").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, product)
	}
}

// GET /api/colors — distinct color values across the catalog.
func GetColors(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/colors"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		values, err := db.Collection("allProducts").Distinct(ctx, "colors", bson.M{})
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, stringValues(values))
	}
}

// GET /api/badges
func GetBadges(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/badges"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		values, err := db.Collection("allProducts").Distinct(ctx, "badge", bson.M{"badge": bson.M{"$ne": ""}})
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, stringValues(values))
	}
}

func stringValues(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

/* =======================
   ADMIN MUTATIONS
======================= */

// buildProduct shapes a create request into a product document. A missing
// gallery falls back to the cover image, and both timestamps start equal.
func buildProduct(req ProductCreateRequest, now time.Time) models.Product {
	images := req.Images
	if len(images) == 0 {
		images = []string{req.Image}
	}

	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}

	return models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Image:         req.Image,
		Images:        images,
		Category:      strings.TrimSpace(req.Category),
		Colors:        req.Colors,
		Badge:         strings.TrimSpace(req.Badge),
		Stock:         stock,
		Featured:      req.Featured,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// POST /api/products
func CreateProduct(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			respondError(c, http.StatusBadRequest, route, "price must be greater than 0")
			return
		}

		if req.Stock != nil && *req.Stock < 0 {
			respondError(c, http.StatusBadRequest, route, "stock cannot be negative")
			return
		}

		product := buildProduct(req, time.Now())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("allProducts").InsertOne(ctx, product)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		product.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateProducts()
		respondCreated(c, product)
	}
}

// PUT /api/products/:id
func UpdateProduct(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		var req ProductUpdateRequest
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
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				respondError(c, http.StatusBadRequest, route, "price must be greater than 0")
				return
			}
			update["price"] = *req.Price
		}
		if req.OriginalPrice != nil {
			update["originalPrice"] = *req.OriginalPrice
		}
		if req.Image != nil {
			update["image"] = *req.Image
		}
		if req.Images != nil {
			update["images"] = *req.Images
		}
		if req.Category != nil {
			update["category"] = strings.TrimSpace(*req.Category)
		}
		if req.Colors != nil {
			update["colors"] = *req.Colors
		}
		if req.Badge != nil {
			update["badge"] = strings.TrimSpace(*req.Badge)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondError(c, http.StatusBadRequest, route, "stock cannot be negative")
				return
			}
			update["stock"] = *req.Stock
		}
		if req.Featured != nil {
			update["featured"] = *req.Featured
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Product
		err = db.Collection("allProducts").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateProducts()
		respondOK(c, updated)
	}
}

// DELETE /api/products/:id — fetch before delete so the response can carry
// the removed document.
func DeleteProduct(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("allProducts").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		if _, err := db.Collection("allProducts").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateProducts()
		respondDeleted(c, product, "product deleted")
	}
}
