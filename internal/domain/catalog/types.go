package catalog

import (
	"time"

	"pasal/internal/pricing"
)

type Brand struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	BrandOffer float64   `json:"brand_offer"`
	IsActive   bool      `json:"is_active"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	CategoryOffer float64   `json:"category_offer"`
	IsActive      bool      `json:"is_active"`
	IsDeleted     bool      `json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  *string `json:"description,omitempty"`
	RegularPrice float64 `json:"regular_price"`
	ProductOffer float64 `json:"product_offer"`
	TotalStock   int     `json:"total_stock"`
	CategoryID   *int64  `json:"category_id,omitempty"`
	BrandID      *int64  `json:"brand_id,omitempty"`
	IsListed     bool    `json:"is_listed"`
	IsDeleted    bool    `json:"is_deleted"`

	// Populated on read paths that join the refs; nil when the row carries
	// only the ids. The pricing layer treats nil as a zero offer.
	Category *Category `json:"category,omitempty"`
	Brand    *Brand    `json:"brand,omitempty"`

	Variants []Variant `json:"variants"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Variant struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	Size         string  `json:"size"`
	Stock        int     `json:"stock"`
	BasePrice    float64 `json:"base_price"`
	VariantOffer float64 `json:"variant_specific_offer"`

	// Derived cache, never a source of truth. Eagerly rewritten on every
	// product save and by the offer fan-out; may still lag an offer edit
	// until the fan-out lands.
	FinalPrice          *float64   `json:"final_price,omitempty"`
	FinalPriceUpdatedAt *time.Time `json:"final_price_updated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductImage struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	URL       string    `json:"url"`
	IsPrimary bool      `json:"is_primary"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// PricingInputs flattens a product and its populated refs into the resolver's
// input shape. Unpopulated refs come through as nil offer pointers.
func (p *Product) PricingInputs() pricing.Product {
	in := pricing.Product{
		RegularPrice: p.RegularPrice,
		ProductOffer: p.ProductOffer,
	}
	if p.Category != nil {
		in.CategoryOffer = &p.Category.CategoryOffer
	}
	if p.Brand != nil {
		in.BrandOffer = &p.Brand.BrandOffer
	}
	return in
}

func (v *Variant) PricingInputs() pricing.Variant {
	return pricing.Variant{
		Size:         v.Size,
		Stock:        v.Stock,
		BasePrice:    v.BasePrice,
		VariantOffer: v.VariantOffer,
	}
}

// PricedVariant is the storefront payload for one variant: the resolved
// quote plus the dataset attributes the page embeds for the client mirror.
type PricedVariant struct {
	VariantID int64             `json:"variant_id"`
	Size      string            `json:"size"`
	Stock     int               `json:"stock"`
	Quote     pricing.Quote     `json:"quote"`
	Dataset   map[string]string `json:"dataset"`
}

// ProductView is the storefront detail payload.
type ProductView struct {
	Product           *Product        `json:"product"`
	Variants          []PricedVariant `json:"variants"`
	AverageFinalPrice float64         `json:"average_final_price"`
	Images            []*ProductImage `json:"images"`
}

// ProductCard is the lightweight listing shape.
type ProductCard struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	BrandName         *string `json:"brand_name,omitempty"`
	CategoryName      *string `json:"category_name,omitempty"`
	RegularPrice      float64 `json:"regular_price"`
	AverageFinalPrice float64 `json:"average_final_price"`
	MaxOffer          float64 `json:"max_offer"`
	TotalStock        int     `json:"total_stock"`
	PrimaryImageURL   *string `json:"primary_image_url,omitempty"`
}
