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
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/models"
)

type UserCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserUpdateRequest struct {
	Name     *string `json:"name"`
	Image    *string `json:"image"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// POST /api/users — public registration.
func CreateUser(db *mongo.Database, inv *cache.Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/users"
		defer handlePanic(c, route)

		var req UserCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if len(req.Password) < 6 {
			respondError(c, http.StatusBadRequest, route, "password must be at least 6 characters")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, route, "Email already registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		now := time.Now()
		user := models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			Provider:     "credentials",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		result, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusConflict, route, "Email already registered")
				return
			}
			respondInternal(c, route, err)
			return
		}
		user.ID = result.InsertedID.(primitive.ObjectID)

		inv.RevalidateUsers()
		respondCreated(c, user)
	}
}

// GET /api/users — admin only.
func GetUsers(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		limit, skip, err := parseLimitSkip(c.Query("limit"), c.Query("skip"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		opts := options.Find().
			SetSkip(skip).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("users").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondInternal(c, route, err)
			return
		}

		respondList(c, users, total, limit, skip, len(users))
	}
}

// GET /api/users/:id — the user themselves or an admin.
func GetUser(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		if _, denial := auth.RequireOwnerOrAdmin(c, secret, id); denial != nil {
			denial.Write(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, user)
	}
}

// PUT /api/users/:id — owner or admin; only admins may change roles.
func UpdateUser(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/users/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		grant, denial := auth.RequireOwnerOrAdmin(c, secret, id)
		if denial != nil {
			denial.Write(c)
			return
		}

		var req UserUpdateRequest
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
		if req.Image != nil {
			update["image"] = *req.Image
		}
		if req.Password != nil {
			if len(*req.Password) < 6 {
				respondError(c, http.StatusBadRequest, route, "password must be at least 6 characters")
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				respondInternal(c, route, err)
				return
			}
			update["passwordHash"] = string(hash)
		}
		if req.Role != nil {
			if !grant.IsAdmin {
				respondError(c, http.StatusForbidden, route, "only admins can change roles")
				return
			}
			role := strings.TrimSpace(*req.Role)
			if role != models.RoleUser && role != models.RoleAdmin {
				respondError(c, http.StatusBadRequest, route, "invalid role")
				return
			}
			update["role"] = role
		}

		if len(update) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.User
		err = db.Collection("users").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)

		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		inv.RevalidateUsers()
		respondOK(c, updated)
	}
}

// DELETE /api/users/:id — admin only.
func DeleteUser(db *mongo.Database, inv *cache.Invalidator, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/users/:id"
		defer handlePanic(c, route)

		if _, denial := auth.RequireAdmin(c, secret); denial != nil {
			denial.Write(c)
			return
		}

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondInternal(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		inv.RevalidateUsers()
		respondMessage(c, "user deleted")
	}
}
