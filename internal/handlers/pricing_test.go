package handlers

import (
	"testing"
	"time"

	"storefront/internal/models"
)

func TestItemSubtotalRoundsToCents(t *testing.T) {
	if got := itemSubtotal(19.99, 3); got != 59.97 {
		t.Fatalf("expected 59.97, got %v", got)
	}
	// 0.1+0.2 style drift must not appear
	if got := itemSubtotal(0.1, 3); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
}

func TestComputeDiscountPercentage(t *testing.T) {
	coupon := models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 15}
	if got := computeDiscount(coupon, 89.90); got != 13.49 {
		t.Fatalf("expected 13.49, got %v", got)
	}
}

func TestComputeDiscountFixedCappedAtSubtotal(t *testing.T) {
	coupon := models.Coupon{DiscountType: models.DiscountFixed, DiscountValue: 50}
	if got := computeDiscount(coupon, 30); got != 30 {
		t.Fatalf("expected fixed discount capped at subtotal, got %v", got)
	}
	if got := computeDiscount(coupon, 80); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestComputeDiscountUnknownTypeIsZero(t *testing.T) {
	coupon := models.Coupon{DiscountType: "bogus", DiscountValue: 50}
	if got := computeDiscount(coupon, 100); got != 0 {
		t.Fatalf("expected 0 for unknown type, got %v", got)
	}
}

func TestOrderTotalNeverNegative(t *testing.T) {
	if got := orderTotal(20, 50); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := orderTotal(100, 13.49); got != 86.51 {
		t.Fatalf("expected 86.51, got %v", got)
	}
}

func TestCouponIssue(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Hour)

	cases := []struct {
		name     string
		coupon   models.Coupon
		subtotal float64
		wantOK   bool
	}{
		{"active and valid", models.Coupon{Active: true, DiscountType: models.DiscountFixed, DiscountValue: 5}, 100, true},
		{"inactive", models.Coupon{Active: false}, 100, false},
		{"expired", models.Coupon{Active: true, ExpiresAt: &expired}, 100, false},
		{"exhausted", models.Coupon{Active: true, MaxUses: 2, UsedCount: 2}, 100, false},
		{"below minimum", models.Coupon{Active: true, MinOrderAmount: 50}, 40, false},
		{"at minimum", models.Coupon{Active: true, MinOrderAmount: 50}, 50, true},
	}

	for _, tc := range cases {
		issue := couponIssue(tc.coupon, tc.subtotal, now)
		if tc.wantOK && issue != "" {
			t.Fatalf("%s: expected usable, got %q", tc.name, issue)
		}
		if !tc.wantOK && issue == "" {
			t.Fatalf("%s: expected an issue", tc.name)
		}
	}
}

func TestHasMore(t *testing.T) {
	if !hasMore(10, 0, 5) {
		t.Fatal("expected more when 5 of 10 returned")
	}
	if hasMore(10, 5, 5) {
		t.Fatal("expected no more when last page returned")
	}
	if hasMore(0, 0, 0) {
		t.Fatal("expected no more for empty set")
	}
}

func TestParseLimitSkip(t *testing.T) {
	limit, skip, err := parseLimitSkip("", "")
	if err != nil || limit != 20 || skip != 0 {
		t.Fatalf("defaults wrong: %d %d %v", limit, skip, err)
	}

	limit, _, err = parseLimitSkip("500", "")
	if err != nil || limit != 100 {
		t.Fatalf("expected cap at 100, got %d %v", limit, err)
	}

	if _, _, err := parseLimitSkip("-1", ""); err == nil {
		t.Fatal("expected error for negative limit")
	}
	if _, _, err := parseLimitSkip("5", "-2"); err == nil {
		t.Fatal("expected error for negative skip")
	}
}
