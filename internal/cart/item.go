package cart

// Upper bounds that keep every derived total far inside int64.
const (
	MaxLineQuantity = 999
	MaxUnitPrice    = 10_000_000
)

func clampQuantity(quantity int) int {
	if quantity > MaxLineQuantity {
		return MaxLineQuantity
	}
	return quantity
}

// withinPriceBounds reports whether every price component of a line stays
// inside MaxUnitPrice.
func withinPriceBounds(product Product, variant *Variant) bool {
	if product.Price < 0 || product.Price > MaxUnitPrice {
		return false
	}
	if product.SalePrice != nil && (*product.SalePrice < 0 || *product.SalePrice > MaxUnitPrice) {
		return false
	}
	if variant != nil && (variant.PriceAdjustment < -MaxUnitPrice || variant.PriceAdjustment > MaxUnitPrice) {
		return false
	}
	return true
}

// Product is the catalog snapshot captured when an item is added.
// Prices are whole currency units.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	Image     string `json:"image,omitempty"`
	Price     int64  `json:"price"`
	SalePrice *int64 `json:"salePrice,omitempty"`
}

// EffectivePrice is the sale price when one is set, otherwise the base price.
func (p Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

// Variant is a purchasable option of a product with its own price delta.
type Variant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PriceAdjustment int64  `json:"priceAdjustment"`
}

// CartItem is one line of the cart. At most one line exists per
// (ProductID, VariantID) pair in a collection.
type CartItem struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	VariantID *string  `json:"variantId,omitempty"`
	Quantity  int      `json:"quantity"`
	Product   Product  `json:"product"`
	Variant   *Variant `json:"variant,omitempty"`
}

// SavedItem is a line parked in the save-for-later collection.
type SavedItem = CartItem

// UnitPrice is the effective product price plus the variant adjustment.
func (i CartItem) UnitPrice() int64 {
	price := i.Product.EffectivePrice()
	if i.Variant != nil {
		price += i.Variant.PriceAdjustment
	}
	return price
}

// LineTotal is UnitPrice times Quantity.
func (i CartItem) LineTotal() int64 {
	return i.UnitPrice() * int64(i.Quantity)
}

type lineKey struct {
	productID string
	variantID string
}

func keyOf(item CartItem) lineKey {
	key := lineKey{productID: item.ProductID}
	if item.VariantID != nil {
		key.variantID = *item.VariantID
	}
	return key
}

func indexByID(items []CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func indexByKey(items []CartItem, key lineKey) int {
	for i := range items {
		if keyOf(items[i]) == key {
			return i
		}
	}
	return -1
}

func removeAt(items []CartItem, idx int) []CartItem {
	out := make([]CartItem, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}

func cloneItem(item CartItem) CartItem {
	out := item
	if item.VariantID != nil {
		id := *item.VariantID
		out.VariantID = &id
	}
	if item.Variant != nil {
		v := *item.Variant
		out.Variant = &v
	}
	if item.Product.SalePrice != nil {
		sale := *item.Product.SalePrice
		out.Product.SalePrice = &sale
	}
	return out
}

func cloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, cloneItem(item))
	}
	return out
}
