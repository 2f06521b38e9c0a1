package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type orderShippingRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country" binding:"required"`
}

type CreateOrderRequest struct {
	CustomerName  string               `json:"customerName" binding:"required"`
	CustomerEmail string               `json:"customerEmail" binding:"required"`
	CustomerPhone string               `json:"customerPhone"`
	Shipping      orderShippingRequest `json:"shipping" binding:"required"`
	Items         []orderItemRequest   `json:"items" binding:"required"`
	CouponCode    string               `json:"couponCode"`
	PaymentMethod string               `json:"paymentMethod" binding:"required"`
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

/* =======================
   CHECKOUT
======================= */

// POST /api/orders — prices come from the catalog, never from the client.
func CreateOrder(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if len(req.Items) == 0 {
			respondError(c, http.StatusBadRequest, route, "items are required")
			return
		}

		// checkout works for guests too; a session just links the order
		principal, err := auth.SessionFromHeader(c.GetHeader("Authorization"), secret)
		if err != nil {
			respondError(c, http.StatusUnauthorized, route, "invalid session")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		items := make([]models.OrderItem, 0, len(req.Items))
		subtotal := 0.0

		for _, item := range req.Items {
			if item.Quantity < 1 {
				respondError(c, http.StatusBadRequest, route, "quantity must be at least 1")
				return
			}

			productID, err := primitive.ObjectIDFromHex(item.ProductID)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid productId: "+item.ProductID)
				return
			}

			var product models.Product
			err = db.Collection("allProducts").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, "product not found: "+item.ProductID)
				return
			}
			if err != nil {
				respondInternal(c, route, err)
				return
			}

			if product.Stock < item.Quantity {
				respondError(c, http.StatusBadRequest, route, "insufficient stock for "+product.Name)
				return
			}

			lineSubtotal := itemSubtotal(product.Price, item.Quantity)
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Image:     product.Image,
				Price:     product.Price,
				Quantity:  item.Quantity,
				Subtotal:  lineSubtotal,
			})
			subtotal = orderTotal(subtotal+lineSubtotal, 0)
		}

		discount := 0.0
		couponCode := ""
		var couponID primitive.ObjectID

		if code := strings.ToUpper(strings.TrimSpace(req.CouponCode)); code != "" {
			var coupon models.Coupon
			err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, "invalid coupon code")
				return
			}
			if err != nil {
				respondInternal(c, route, err)
				return
			}

			if issue := couponIssue(coupon, subtotal, time.Now()); issue != "" {
				respondError(c, http.StatusBadRequest, route, issue)
				return
			}

			discount = computeDiscount(coupon, subtotal)
			couponCode = coupon.Code
			couponID = coupon.ID
		}

		now := time.Now()
		order := models.Order{
			OrderNumber:   newOrderNumber(),
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			Shipping: models.ShippingAddress{
				Street:  req.Shipping.Street,
				City:    req.Shipping.City,
				State:   req.Shipping.State,
				Zip:     req.Shipping.Zip,
				Country: req.Shipping.Country,
			},
			Items:         items,
			Status:        models.StatusPending,
			Subtotal:      subtotal,
			Discount:      discount,
			CouponCode:    couponCode,
			Total:         orderTotal(subtotal, discount),
			PaymentMethod: req.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if principal != nil {
			order.UserID = &principal.ID
		}

		result, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		order.ID = result.InsertedID.(primitive.ObjectID)

		// decrement stock per line; single-document updates, no transaction
		for _, item := range items {
			_, err := db.Collection("allProducts").UpdateByID(ctx, item.ProductID, bson.M{
				"$inc": bson.M{"stock": -item.Quantity},
				"$set": bson.M{"updatedAt": now},
			})
			if err != nil {
				respondInternal(c, route, err)
				return
			}
		}

		if couponCode != "" {
			// The order is already placed; a failed usage count is worth a
			// log line but not a 500.
			if _, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{
				"$inc": bson.M{"usedCount": 1},
				"$set": bson.M{"updatedAt": now},
			}); err != nil {
				log.Printf("[%s] failed to increment usage for coupon %s: %v", route, couponCode, err)
			}
			inv.RevalidateCoupons()
		}

		inv.RevalidateOrders()
		inv.RevalidateProducts()
		respondCreated(c, order)
	}
}

/* =======================
   READS
======================= */

// GET /api/orders — admins see everything, users see their own.
func GetOrders(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		principal, denial := auth.RequireAuth(c, secret)
		if denial != nil {
			denial.Write(c)
			return
		}

		limit, skip, err := parseLimitSkip(c.Query("limit"), c.Query("skip"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if !principal.IsAdmin() {
			filter["userId"] = principal.ID
		}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		opts := options.Find().
			SetSkip(skip).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondList(c, orders, total, limit, skip, len(orders))
	}
}

// GET /api/orders/:id
func GetOrder(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		owner := primitive.NilObjectID
		if order.UserID != nil {
			owner = *order.UserID
		}
		if _, denial := auth.RequireOwnerOrAdmin(c, secret, owner); denial != nil {
			denial.Write(c)
			return
		}

		respondOK(c, order)
	}
}

/* =======================
   ADMIN MUTATIONS
======================= */

// PUT/PATCH /api/orders/:id — status transitions are not validated, any
// non-empty status string is stored as-is.
func UpdateOrderStatus(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		var req OrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		status := strings.TrimSpace(req.Status)
		if status == "" {
			respondError(c, http.StatusBadRequest, route, "status is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateOrders()
		respondOK(c, updated)
	}
}

// DELETE /api/orders/:id
func DeleteOrder(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		if _, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateOrders()
		respondDeleted(c, order, "order deleted")
	}
}
