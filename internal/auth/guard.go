package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Denial is a ready-made error response. Guard calls return either a
// principal or a denial, never both; callers branch on which is nil instead
// of handling panics or sentinel errors.
type Denial struct {
	Status  int
	Message string
}

// Write sends the denial as the standard envelope and aborts the request.
func (d *Denial) Write(c *gin.Context) {
	c.AbortWithStatusJSON(d.Status, gin.H{"success": false, "error": d.Message})
}

// Grant is the result of an owner-or-admin check.
type Grant struct {
	Principal *Principal
	IsAdmin   bool
}

var (
	denyUnauthorized = &Denial{Status: http.StatusUnauthorized, Message: "authentication required"}
	denyForbidden    = &Denial{Status: http.StatusForbidden, Message: "insufficient permissions"}
)

// RequireAuth fetches the session once and requires any signed-in principal.
func RequireAuth(c *gin.Context, secret string) (*Principal, *Denial) {
	principal, err := SessionFromHeader(c.GetHeader("Authorization"), secret)
	if err != nil || principal == nil {
		return nil, denyUnauthorized
	}
	return requireAuth(principal)
}

// RequireAdmin requires a signed-in principal with the admin role.
func RequireAdmin(c *gin.Context, secret string) (*Principal, *Denial) {
	principal, err := SessionFromHeader(c.GetHeader("Authorization"), secret)
	if err != nil {
		return nil, denyUnauthorized
	}
	return requireAdmin(principal)
}

// RequireOwnerOrAdmin requires the caller to own the target resource or be
// an admin. The grant reports which of the two applied.
func RequireOwnerOrAdmin(c *gin.Context, secret string, targetUserID primitive.ObjectID) (*Grant, *Denial) {
	principal, err := SessionFromHeader(c.GetHeader("Authorization"), secret)
	if err != nil {
		return nil, denyUnauthorized
	}
	return requireOwnerOrAdmin(principal, targetUserID)
}

func requireAuth(p *Principal) (*Principal, *Denial) {
	if p == nil {
		return nil, denyUnauthorized
	}
	return p, nil
}

func requireAdmin(p *Principal) (*Principal, *Denial) {
	if p == nil {
		return nil, denyUnauthorized
	}
	if !p.IsAdmin() {
		return nil, denyForbidden
	}
	return p, nil
}

func requireOwnerOrAdmin(p *Principal, targetUserID primitive.ObjectID) (*Grant, *Denial) {
	if p == nil {
		return nil, denyUnauthorized
	}
	if p.IsAdmin() {
		return &Grant{Principal: p, IsAdmin: true}, nil
	}
	if p.ID == targetUserID {
		return &Grant{Principal: p}, nil
	}
	return nil, denyForbidden
}
