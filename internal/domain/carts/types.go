package carts

import (
	"context"
	"time"

	"pasal/internal/pricing"
)

type Cart struct {
	ID         int64      `json:"id"`
	UserID     *int64     `json:"user_id,omitempty"`
	GuestToken *string    `json:"guest_token,omitempty"`
	Status     string     `json:"status"` // active, converted, abandoned
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Line is one cart row priced live: quantities come from the cart, the unit
// price from the resolver at read time, so an offer edit shows up on the next
// cart view without any cart write.
type Line struct {
	ItemID      int64         `json:"item_id"`
	ProductID   int64         `json:"product_id"`
	VariantID   int64         `json:"variant_id"`
	ProductName string        `json:"product_name"`
	Size        string        `json:"size"`
	Quantity    int           `json:"quantity"`
	Stock       int           `json:"stock"`
	Quote       pricing.Quote `json:"quote"`
	LineTotal   float64       `json:"line_total"`
}

type View struct {
	Cart  Cart    `json:"cart"`
	Lines []Line  `json:"items"`
	Total float64 `json:"total"`
}

type Store interface {
	EnsureActive(ctx context.Context, userID int64) (int64, error)
	AddItem(ctx context.Context, userID, variantID int64, qty int) error
	UpdateItemQty(ctx context.Context, userID, itemID int64, qty int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
	GetView(ctx context.Context, userID int64) (*View, error)
	MarkConverted(ctx context.Context, cartID int64) error

	// housekeeping
	MarkExpiredAsAbandoned(ctx context.Context) (int64, error)
}
