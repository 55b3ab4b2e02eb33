package orders

import (
	"context"
	"time"

	"pasal/internal/pricing"
)

type Order struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"` // placed, cancelled, returned, delivered
	Subtotal  float64   `json:"subtotal"`
	Discount  float64   `json:"discount"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem snapshots the resolved price at checkout time. Later offer edits
// never touch placed orders; the applied offer and its label are frozen here.
type OrderItem struct {
	ID           int64             `json:"id"`
	OrderID      int64             `json:"order_id"`
	VariantID    *int64            `json:"variant_id,omitempty"`
	ProductName  string            `json:"product_name"`
	Size         string            `json:"size"`
	Quantity     int               `json:"quantity"`
	BasePrice    float64           `json:"base_price"`
	AppliedOffer float64           `json:"applied_offer"`
	OfferType    pricing.OfferType `json:"offer_type"`
	UnitPrice    float64           `json:"unit_price"`
	LineTotal    float64           `json:"line_total"`
}

type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type Store interface {
	// Checkout converts the user's active cart into an order, pricing every
	// line through the resolver and decrementing stock.
	CreateFromCart(ctx context.Context, userID int64) (*Order, error)

	GetByReference(ctx context.Context, reference string) (*OrderDetail, error)

	// User-facing
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error)
	Cancel(ctx context.Context, userID, orderID int64) error

	// Admin-facing
	ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
}
