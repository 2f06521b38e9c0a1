package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func Login(db *mongo.Database, secret string, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		// OAuth accounts have no password to compare against
		if user.PasswordHash == "" {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := auth.IssueSession(user, secret, sessionTTL)
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		log.Println("[AUTH] login succeeded:", user.Email)
		respondOK(c, gin.H{
			"token": token,
			"user":  user,
		})
	}
}

// GET /api/auth/me — resolves the session against the store so a stale
// token cannot report a role the account no longer has.
func Me(db *mongo.Database, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/me"
		defer handlePanic(c, route)

		principal, denial := auth.RequireAuth(c, secret)
		if denial != nil {
			denial.Write(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"_id": principal.ID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusUnauthorized, route, "account no longer exists")
			return
		}
		if err != nil {
			respondInternal(c, route, err)
			return
		}

		respondOK(c, user)
	}
}

// POST /api/auth/logout — sessions are stateless tokens, so logout is just
// an acknowledgement; the client discards its token.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondMessage(c, "logged out")
	}
}
