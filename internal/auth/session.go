package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Principal is the session payload: who is making the request.
type Principal struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Image string
	Role  string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// IssueSession signs a session token for the user.
func IssueSession(user models.User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"name":   user.Name,
		"email":  user.Email,
		"image":  user.Image,
		"role":   user.Role,
		"exp":    time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSession validates a raw token and rebuilds the principal.
func ParseSession(raw, secret string) (*Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid session claims")
	}

	idValue, _ := claims["userId"].(string)
	userID, err := primitive.ObjectIDFromHex(strings.TrimSpace(idValue))
	if err != nil {
		return nil, errors.New("invalid userId claim")
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	image, _ := claims["image"].(string)
	role, _ := claims["role"].(string)

	return &Principal{
		ID:    userID,
		Name:  name,
		Email: email,
		Image: image,
		Role:  role,
	}, nil
}

// SessionFromHeader extracts the bearer token from an Authorization header
// and parses it. Returns nil without error when no header is present.
func SessionFromHeader(header, secret string) (*Principal, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header")
	}

	return ParseSession(parts[1], secret)
}
