package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestReviewEligibility(t *testing.T) {
	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	delivered := models.Order{
		UserID: &userID,
		Status: models.StatusDelivered,
		Items:  []models.OrderItem{{ProductID: productID, Quantity: 1}},
	}

	if issue := reviewEligibility(delivered, userID, productID); issue != "" {
		t.Fatalf("expected eligible, got %q", issue)
	}

	notMine := delivered
	notMine.UserID = &otherID
	if issue := reviewEligibility(notMine, userID, productID); issue == "" {
		t.Fatal("expected rejection for someone else's order")
	}

	guest := delivered
	guest.UserID = nil
	if issue := reviewEligibility(guest, userID, productID); issue == "" {
		t.Fatal("expected rejection for guest order")
	}

	pending := delivered
	pending.Status = models.StatusPending
	if issue := reviewEligibility(pending, userID, productID); issue == "" {
		t.Fatal("expected rejection for undelivered order")
	}

	wrongProduct := delivered
	wrongProduct.Items = []models.OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1}}
	if issue := reviewEligibility(wrongProduct, userID, productID); issue == "" {
		t.Fatal("expected rejection when product not in order")
	}
}
