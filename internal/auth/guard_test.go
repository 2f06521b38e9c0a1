package auth

import (
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestRequireAuthRejectsMissingSession(t *testing.T) {
	principal, denial := requireAuth(nil)
	if principal != nil {
		t.Fatal("expected no principal without a session")
	}
	if denial == nil || denial.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 denial, got %+v", denial)
	}
}

func TestRequireAdmin(t *testing.T) {
	admin := &Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	if _, denial := requireAdmin(admin); denial != nil {
		t.Fatalf("expected admin to pass, got %+v", denial)
	}

	user := &Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, denial := requireAdmin(user)
	if denial == nil || denial.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %+v", denial)
	}

	_, denial = requireAdmin(nil)
	if denial == nil || denial.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %+v", denial)
	}
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	ownerID := primitive.NewObjectID()

	owner := &Principal{ID: ownerID, Role: models.RoleUser}
	grant, denial := requireOwnerOrAdmin(owner, ownerID)
	if denial != nil {
		t.Fatalf("expected owner to pass, got %+v", denial)
	}
	if grant.IsAdmin {
		t.Fatal("owner grant should not report admin")
	}

	admin := &Principal{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	grant, denial = requireOwnerOrAdmin(admin, ownerID)
	if denial != nil {
		t.Fatalf("expected admin to pass, got %+v", denial)
	}
	if !grant.IsAdmin {
		t.Fatal("admin grant should report admin")
	}

	stranger := &Principal{ID: primitive.NewObjectID(), Role: models.RoleUser}
	_, denial = requireOwnerOrAdmin(stranger, ownerID)
	if denial == nil || denial.Status != http.StatusForbidden {
		t.Fatalf("expected 403 for third party, got %+v", denial)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	user := models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test User",
		Email: "test@example.com",
		Role:  models.RoleUser,
	}

	token, err := IssueSession(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	principal, err := ParseSession(token, "secret")
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if principal.ID != user.ID || principal.Email != user.Email || principal.Role != user.Role {
		t.Fatalf("principal mismatch: %+v", principal)
	}

	if _, err := ParseSession(token, "wrong-secret"); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestSessionFromHeader(t *testing.T) {
	if principal, err := SessionFromHeader("", "secret"); err != nil || principal != nil {
		t.Fatalf("empty header should yield nil principal, got %v %v", principal, err)
	}

	if _, err := SessionFromHeader("Basic abc", "secret"); err == nil {
		t.Fatal("expected error for non-bearer header")
	}
}
