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

const maxReviewImages = 3

type ReviewCreateRequest struct {
	ProductID string   `json:"productId" binding:"required"`
	OrderID   string   `json:"orderId" binding:"required"`
	Rating    int      `json:"rating" binding:"required"`
	Title     string   `json:"title"`
	Comment   string   `json:"comment" binding:"required"`
	Images    []string `json:"images"`
}

type ReviewUpdateRequest struct {
	Rating  *int      `json:"rating"`
	Title   *string   `json:"title"`
	Comment *string   `json:"comment"`
	Images  *[]string `json:"images"`
}

// reviewEligibility explains why a user may not review a product against an
// order; empty string means the review is allowed.
func reviewEligibility(order models.Order, userID, productID primitive.ObjectID) string {
	if order.UserID == nil || *order.UserID != userID {
		return "order does not belong to you"
	}
	if order.Status != models.StatusDelivered {
		return "only delivered orders can be reviewed"
	}
	for _, item := range order.Items {
		if item.ProductID == productID {
			return ""
		}
	}
	return "product is not part of this order"
}

// GET /api/reviews?productId= — reviews for a product with rating summary.
func GetReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Query("productId")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "productId is required")
			return
		}

		limit, skip, err := parseLimitSkip(c.Query("limit"), c.Query("skip"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"productId": productID}

		total, err := db.Collection("reviews").CountDocuments(ctx, filter)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		opts := options.Find().
			SetSkip(skip).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("reviews").Find(ctx, filter, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			respondInternal(c, route, err)
			return
		}

		summary, err := reviewSummary(ctx, db, productID, total)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    reviews,
			"summary": summary,
			"pagination": gin.H{
				"total":   total,
				"limit":   limit,
				"skip":    skip,
				"hasMore": hasMore(total, skip, len(reviews)),
			},
		})
	}
}

func reviewSummary(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, total int64) (models.ReviewSummary, error) {
	summary := models.ReviewSummary{TotalCount: total}
	if total == 0 {
		return summary, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := db.Collection("reviews").Aggregate(ctx, pipeline)
	if err != nil {
		return summary, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return summary, err
	}
	if len(results) > 0 {
		summary.AverageRating = results[0].Avg
	}
	return summary, nil
}

// POST /api/reviews
func CreateReview(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews"
		defer handlePanic(c, route)

		principal, denial := auth.RequireAuth(c, secret)
		if denial != nil {
			denial.Write(c)
			return
		}

		var req ReviewCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Rating < 1 || req.Rating > 5 {
			respondError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
			return
		}
		if len(req.Images) > maxReviewImages {
			respondError(c, http.StatusBadRequest, route, "at most 3 images are allowed")
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}
		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusBadRequest, route, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		if issue := reviewEligibility(order, principal.ID, productID); issue != "" {
			respondError(c, http.StatusBadRequest, route, issue)
			return
		}

		duplicate, err := db.Collection("reviews").CountDocuments(ctx, bson.M{
			"userId":    principal.ID,
			"productId": productID,
			"orderId":   orderID,
		})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if duplicate > 0 {
			respondError(c, http.StatusBadRequest, route, "you have already reviewed this product for this order")
			return
		}

		now := time.Now()
		review := models.Review{
			ProductID: productID,
			OrderID:   orderID,
			UserID:    principal.ID,
			UserName:  principal.Name,
			Rating:    req.Rating,
			Title:     strings.TrimSpace(req.Title),
			Comment:   strings.TrimSpace(req.Comment),
			Images:    req.Images,
			CreatedAt: now,
			UpdatedAt: now,
		}

		result, err := db.Collection("reviews").InsertOne(ctx, review)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, route, "you have already reviewed this product for this order")
				return
			}
			respondInternal(c, route, err)
			return
		}
		review.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateReviews()
		respondCreated(c, review)
	}
}

// PUT /api/reviews/:id — the author may edit their review; admins may too.
func UpdateReview(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/reviews/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid review id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		if _, denial := auth.RequireOwnerOrAdmin(c, secret, review.UserID); denial != nil {
			denial.Write(c)
			return
		}

		var req ReviewUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.Rating != nil {
			if *req.Rating < 1 || *req.Rating > 5 {
				respondError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
				return
			}
			update["rating"] = *req.Rating
		}
		if req.Title != nil {
			update["title"] = strings.TrimSpace(*req.Title)
		}
		if req.Comment != nil {
			comment := strings.TrimSpace(*req.Comment)
			if comment == "" {
				respondError(c, http.StatusBadRequest, route, "comment cannot be empty")
				return
			}
			update["comment"] = comment
		}
		if req.Images != nil {
			if len(*req.Images) > maxReviewImages {
				respondError(c, http.StatusBadRequest, route, "at most 3 images are allowed")
				return
			}
			update["images"] = *req.Images
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		var updated models.Review
		err = db.Collection("reviews").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateReviews()
		respondOK(c, updated)
	}
}

// DELETE /api/reviews/:id
func DeleteReview(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/reviews/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid review id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var review models.Review
		err = db.Collection("reviews").FindOne(ctx, bson.M{"_id": id}).Decode(&review)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "review not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		if _, denial := auth.RequireOwnerOrAdmin(c, secret, review.UserID); denial != nil {
			denial.Write(c)
			return
		}

		if _, err := db.Collection("reviews").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateReviews()
		respondMessage(c, "review deleted")
	}
}
