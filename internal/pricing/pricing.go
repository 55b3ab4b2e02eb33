// Package pricing is the single source of truth for offer resolution and
// price derivation. Every layer that needs a discounted price (the catalog
// repository when it caches variant prices, the storefront handlers, the cart
// and order pricing, the dataset mirror) calls Resolve instead of carrying
// its own copy of the formula.
package pricing

import "math"

// OfferType labels which source produced the applied offer. The storefront
// shows it as the discount badge, so the tie-break order below is user-visible.
type OfferType string

const (
	OfferNone     OfferType = "none"
	OfferCategory OfferType = "category"
	OfferBrand    OfferType = "brand"
	OfferProduct  OfferType = "product"
	OfferVariant  OfferType = "variant"
)

// Product carries the pricing inputs a variant's owning product contributes.
// CategoryOffer and BrandOffer are pointers because a product record may hold
// a bare category/brand id rather than a populated record; nil means "not
// loaded or not set" and contributes no discount.
type Product struct {
	RegularPrice  float64
	ProductOffer  float64
	CategoryOffer *float64
	BrandOffer    *float64
}

// Variant carries one variant's pricing inputs.
type Variant struct {
	Size         string
	Stock        int
	BasePrice    float64
	VariantOffer float64
}

// Quote is the resolved price for one variant. BasePrice is the price the
// percentage was applied to: the variant's own base price, or the product's
// regular price when the variant has none (legacy records).
type Quote struct {
	AppliedOffer float64   `json:"applied_offer"`
	OfferType    OfferType `json:"offer_type"`
	FinalPrice   float64   `json:"final_price"`
	BasePrice    float64   `json:"base_price"`
}

// ClampPercent forces v into [0, 100]. NaN maps to 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// OfferValue reads an offer through a possibly-absent reference. A nil
// pointer (category/brand missing, soft-deleted upstream, or simply never
// populated on this call path) is worth 0 rather than an error: a broken
// reference must degrade the discount, never the whole price computation.
func OfferValue(pct *float64) float64 {
	if pct == nil {
		return 0
	}
	return ClampPercent(*pct)
}

// Resolve computes the applied offer, its source label and the final price
// for one variant. Pure: no I/O, no mutation, safe to call from the
// persistence layer, request handlers and tests alike.
//
// The applied offer is the max of the four sources. When several sources tie
// for the max, the earliest in the fixed order category, brand, product,
// variant wins the label.
func Resolve(p Product, v Variant) Quote {
	candidates := [4]struct {
		typ OfferType
		pct float64
	}{
		{OfferCategory, OfferValue(p.CategoryOffer)},
		{OfferBrand, OfferValue(p.BrandOffer)},
		{OfferProduct, ClampPercent(p.ProductOffer)},
		{OfferVariant, ClampPercent(v.VariantOffer)},
	}

	applied := 0.0
	typ := OfferNone
	for _, c := range candidates {
		// strictly greater, so the earliest source keeps a tied max
		if c.pct > applied {
			applied = c.pct
			typ = c.typ
		}
	}

	base := v.BasePrice
	if base <= 0 {
		base = p.RegularPrice
	}

	return Quote{
		AppliedOffer: applied,
		OfferType:    typ,
		FinalPrice:   base * (1 - applied/100),
		BasePrice:    base,
	}
}
