package cart

import (
	"github.com/angelmondragon/storefront-cart/internal/coupons"
	"github.com/shopspring/decimal"
)

// ShippingPolicy holds the flat-rate shipping constants.
type ShippingPolicy struct {
	// FreeThreshold is the subtotal at or above which shipping is free.
	FreeThreshold int64
	BaseFee       int64
}

// DefaultShippingPolicy is free shipping from ৳2000, otherwise ৳120.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{FreeThreshold: 2000, BaseFee: 120}
}

// Summary is every derived total computed from one snapshot of the cart.
type Summary struct {
	Subtotal  int64 `json:"subtotal"`
	Discount  int64 `json:"discount"`
	Shipping  int64 `json:"shipping"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"itemCount"`
	LineCount int   `json:"lineCount"`

	CouponCode      string `json:"couponCode,omitempty"`
	CouponEligible  bool   `json:"couponEligible"`
	CouponShortfall int64  `json:"couponShortfall,omitempty"`
}

// Subtotal sums unit price times quantity over items.
func Subtotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// ItemCount sums quantities, not lines.
func ItemCount(items []CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// DiscountFor returns the discount rule grants on subtotal. A nil or
// ineligible rule yields zero; shipping rules never discount the subtotal.
func DiscountFor(subtotal int64, rule *coupons.Rule) int64 {
	if rule == nil || !rule.Eligible(subtotal) {
		return 0
	}
	switch rule.Type {
	case coupons.TypePercent:
		return percentOf(subtotal, rule.Value)
	case coupons.TypeFlat:
		return min(rule.Value, subtotal)
	default:
		return 0
	}
}

// percentOf rounds half away from zero to the nearest whole unit.
func percentOf(amount, percent int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// ShippingFor applies the free-shipping threshold, then an eligible
// shipping coupon, then the base fee.
func ShippingFor(subtotal int64, rule *coupons.Rule, policy ShippingPolicy) int64 {
	if subtotal >= policy.FreeThreshold {
		return 0
	}
	if rule != nil && rule.Type == coupons.TypeShipping && rule.Eligible(subtotal) {
		return 0
	}
	return policy.BaseFee
}

// TotalFor is max(subtotal-discount, 0) + shipping.
func TotalFor(subtotal, discount, shipping int64) int64 {
	return max(subtotal-discount, 0) + shipping
}

// Summarize derives all totals for items under the given coupon rule.
func Summarize(items []CartItem, rule *coupons.Rule, policy ShippingPolicy) Summary {
	subtotal := Subtotal(items)
	discount := DiscountFor(subtotal, rule)
	shipping := ShippingFor(subtotal, rule, policy)

	summary := Summary{
		Subtotal:  subtotal,
		Discount:  discount,
		Shipping:  shipping,
		Total:     TotalFor(subtotal, discount, shipping),
		ItemCount: ItemCount(items),
		LineCount: len(items),
	}
	if rule != nil {
		summary.CouponCode = rule.Code
		summary.CouponEligible = rule.Eligible(subtotal)
		summary.CouponShortfall = rule.Shortfall(subtotal)
	}
	return summary
}
