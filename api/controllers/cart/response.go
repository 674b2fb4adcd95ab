package cart

import cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"

// ItemView is a cart line with its derived prices.
type ItemView struct {
	cartsvc.CartItem
	UnitPrice int64 `json:"unitPrice"`
	LineTotal int64 `json:"lineTotal"`
}

// CartView is the shape every cart endpoint returns.
type CartView struct {
	Items      []ItemView      `json:"items"`
	SavedItems []ItemView      `json:"savedItems"`
	CouponCode *string         `json:"couponCode"`
	Summary    cartsvc.Summary `json:"summary"`
}

// CouponView wraps the apply outcome together with the resulting cart.
type CouponView struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Cart    CartView `json:"cart"`
}

func newCartView(store *cartsvc.Store) CartView {
	state, summary := store.Snapshot()
	return CartView{
		Items:      newItemViews(state.Items),
		SavedItems: newItemViews(state.SavedItems),
		CouponCode: state.CouponCode,
		Summary:    summary,
	}
}

func newItemViews(items []cartsvc.CartItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, ItemView{
			CartItem:  item,
			UnitPrice: item.UnitPrice(),
			LineTotal: item.LineTotal(),
		})
	}
	return out
}
