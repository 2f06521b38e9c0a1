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

type CouponCreateRequest struct {
	Code           string     `json:"code" binding:"required"`
	DiscountType   string     `json:"discountType" binding:"required"`
	DiscountValue  float64    `json:"discountValue" binding:"required"`
	MinOrderAmount float64    `json:"minOrderAmount"`
	MaxUses        int        `json:"maxUses"`
	Active         *bool      `json:"active"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

type CouponUpdateRequest struct {
	DiscountType   *string    `json:"discountType"`
	DiscountValue  *float64   `json:"discountValue"`
	MinOrderAmount *float64   `json:"minOrderAmount"`
	MaxUses        *int       `json:"maxUses"`
	Active         *bool      `json:"active"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

type CouponValidateRequest struct {
	Code     string  `json:"code" binding:"required"`
	Subtotal float64 `json:"subtotal" binding:"required"`
}

func validDiscountType(t string) bool {
	return t == models.DiscountPercentage || t == models.DiscountFixed
}

// GET /api/coupons — admin only.
func GetCoupons(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/coupons"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("coupons").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, coupons)
	}
}

// POST /api/coupons — codes are stored uppercased; a duplicate create
// returns 409 without touching the existing coupon.
func CreateCoupon(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		var req CouponCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if code == "" {
			respondError(c, http.StatusBadRequest, route, "code is required")
			return
		}
		if !validDiscountType(req.DiscountType) {
			respondError(c, http.StatusBadRequest, route, "discountType must be percentage or fixed")
			return
		}
		if req.DiscountValue <= 0 {
			respondError(c, http.StatusBadRequest, route, "discountValue must be greater than 0")
			return
		}
		if req.DiscountType == models.DiscountPercentage && req.DiscountValue > 100 {
			respondError(c, http.StatusBadRequest, route, "percentage discount cannot exceed 100")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("coupons").CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, route, "coupon code already exists")
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		now := time.Now()
		coupon := models.Coupon{
			Code:           code,
			DiscountType:   req.DiscountType,
			DiscountValue:  req.DiscountValue,
			MinOrderAmount: req.MinOrderAmount,
			MaxUses:        req.MaxUses,
			Active:         active,
			ExpiresAt:      req.ExpiresAt,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		result, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, route, "coupon code already exists")
				return
			}
			respondInternal(c, route, err)
			return
		}
		coupon.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateCoupons()
		respondCreated(c, coupon)
	}
}

// PUT /api/coupons/:id
func UpdateCoupon(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/coupons/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		var req CouponUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.DiscountType != nil {
			if !validDiscountType(*req.DiscountType) {
				respondError(c, http.StatusBadRequest, route, "discountType must be percentage or fixed")
				return
			}
			update["discountType"] = *req.DiscountType
		}
		if req.DiscountValue != nil {
			if *req.DiscountValue <= 0 {
				respondError(c, http.StatusBadRequest, route, "discountValue must be greater than 0")
				return
			}
			update["discountValue"] = *req.DiscountValue
		}
		if req.MinOrderAmount != nil {
			update["minOrderAmount"] = *req.MinOrderAmount
		}
		if req.MaxUses != nil {
			update["maxUses"] = *req.MaxUses
		}
		if req.Active != nil {
			update["active"] = *req.Active
		}
		if req.ExpiresAt != nil {
			update["expiresAt"] = *req.ExpiresAt
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Coupon
		err = db.Collection("coupons").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "coupon not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateCoupons()
		respondOK(c, updated)
	}
}

// DELETE /api/coupons/:id
func DeleteCoupon(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/coupons/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid coupon id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("coupons").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		inv.RevalidateCoupons()
		respondMessage(c, "coupon deleted")
	}
}

// POST /api/coupons/validate — public lookup at checkout time. Lookup is
// case-insensitive because codes are stored uppercased and the input is
// uppercased before matching.
func ValidateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons/validate"
		defer handlePanic(c, route)

		var req CouponValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "coupon not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		if issue := couponIssue(coupon, req.Subtotal, time.Now()); issue != "" {
			respondError(c, http.StatusBadRequest, route, issue)
			return
		}

		discount := computeDiscount(coupon, req.Subtotal)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"code":     coupon.Code,
				"discount": discount,
				"total":    orderTotal(req.Subtotal, discount),
			},
		})
	}
}
