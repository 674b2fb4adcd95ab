package cart

import "github.com/angelmondragon/storefront-cart/internal/coupons"

// State is the persisted cart triple. Totals are never stored; they are
// derived from Items and CouponCode on read.
type State struct {
	Items      []CartItem  `json:"items"`
	SavedItems []SavedItem `json:"savedItems"`
	CouponCode *string     `json:"couponCode"`
}

// EmptyState returns ([], [], nil).
func EmptyState() State {
	return State{Items: []CartItem{}, SavedItems: []SavedItem{}}
}

// Clone returns a deep copy safe to hand outside the store.
func (s State) Clone() State {
	out := State{
		Items:      cloneItems(s.Items),
		SavedItems: cloneItems(s.SavedItems),
	}
	if s.CouponCode != nil {
		code := *s.CouponCode
		out.CouponCode = &code
	}
	return out
}

// normalizeState repairs a rehydrated record so the store invariants hold:
// duplicate lines merge, non-positive quantities drop, oversized ones clamp
// to MaxLineQuantity, missing ids are regenerated and codes absent from the
// table are cleared.
func normalizeState(in State, table *coupons.Table, newID func() string) State {
	out := State{
		Items:      normalizeItems(in.Items, newID),
		SavedItems: normalizeItems(in.SavedItems, newID),
	}
	if in.CouponCode != nil {
		if rule, ok := table.Lookup(*in.CouponCode); ok {
			code := rule.Code
			out.CouponCode = &code
		}
	}
	return out
}

func normalizeItems(items []CartItem, newID func() string) []CartItem {
	out := make([]CartItem, 0, len(items))
	seenIDs := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.ProductID == "" {
			continue
		}
		item = cloneItem(item)
		item.Quantity = clampQuantity(item.Quantity)
		if item.VariantID != nil && *item.VariantID == "" {
			item.VariantID = nil
		}
		if idx := indexByKey(out, keyOf(item)); idx >= 0 {
			out[idx].Quantity = clampQuantity(out[idx].Quantity + item.Quantity)
			continue
		}
		if _, dup := seenIDs[item.ID]; item.ID == "" || dup {
			item.ID = newID()
		}
		seenIDs[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
