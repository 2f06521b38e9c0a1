package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Money math goes through decimal and is rounded to 2dp at the edges so
// repeated float operations cannot drift totals by a cent.

func itemSubtotal(price float64, quantity int) float64 {
	subtotal := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	value, _ := subtotal.Round(2).Float64()
	return value
}

func orderTotal(subtotal, discount float64) float64 {
	total := decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(discount))
	if total.IsNegative() {
		total = decimal.Zero
	}
	value, _ := total.Round(2).Float64()
	return value
}

// computeDiscount assumes the coupon is already known to be usable for the
// subtotal. Fixed discounts are capped at the subtotal.
func computeDiscount(coupon models.Coupon, subtotal float64) float64 {
	sub := decimal.NewFromFloat(subtotal)

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.DiscountPercentage:
		discount = sub.Mul(decimal.NewFromFloat(coupon.DiscountValue)).Div(decimal.NewFromInt(100))
	case models.DiscountFixed:
		discount = decimal.NewFromFloat(coupon.DiscountValue)
	default:
		return 0
	}

	if discount.GreaterThan(sub) {
		discount = sub
	}
	value, _ := discount.Round(2).Float64()
	return value
}

// couponIssue reports why a coupon cannot be applied to an order of the
// given subtotal; empty string means it is usable.
func couponIssue(coupon models.Coupon, subtotal float64, now time.Time) string {
	if !coupon.Active {
		return "coupon is not active"
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return "coupon has expired"
	}
	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return "coupon usage limit reached"
	}
	if coupon.MinOrderAmount > 0 && subtotal < coupon.MinOrderAmount {
		return "order total is below the coupon minimum"
	}
	return ""
}
