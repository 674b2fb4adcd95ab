package cart

import cartsvc "github.com/angelmondragon/storefront-cart/internal/cart"

// ProductPayload is the catalog snapshot the client sends with an add.
type ProductPayload struct {
	ID        string `json:"id" validate:"required,max=128"`
	Name      string `json:"name" validate:"required,max=256"`
	Slug      string `json:"slug,omitempty" validate:"max=256"`
	Image     string `json:"image,omitempty" validate:"max=2048"`
	Price     int64  `json:"price" validate:"gte=0,lte=10000000"`
	SalePrice *int64 `json:"salePrice,omitempty" validate:"omitempty,gte=0,lte=10000000"`
}

type VariantPayload struct {
	ID              string `json:"id" validate:"required,max=128"`
	Name            string `json:"name" validate:"max=256"`
	PriceAdjustment int64  `json:"priceAdjustment" validate:"gte=-10000000,lte=10000000"`
}

type AddItemRequest struct {
	Product  ProductPayload  `json:"product"`
	Variant  *VariantPayload `json:"variant,omitempty"`
	Quantity int             `json:"quantity" validate:"min=1,max=99"`
}

// UpdateQuantityRequest accepts any integer up to the line cap; zero or less
// removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=999"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"max=64"`
}

func (p ProductPayload) toProduct() cartsvc.Product {
	return cartsvc.Product{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     p.Image,
		Price:     p.Price,
		SalePrice: p.SalePrice,
	}
}

func (v *VariantPayload) toVariant() *cartsvc.Variant {
	if v == nil {
		return nil
	}
	return &cartsvc.Variant{
		ID:              v.ID,
		Name:            v.Name,
		PriceAdjustment: v.PriceAdjustment,
	}
}
