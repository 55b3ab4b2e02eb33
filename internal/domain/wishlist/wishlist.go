package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasal/internal/dbx"
	"pasal/internal/pricing"
)

var ErrNotFound = errors.New("wishlist entry not found")

// Entry is a wishlist row with its variant priced at read time, same as the
// cart: wishlists always show current offers, never cached ones.
type Entry struct {
	ID          int64         `json:"id"`
	VariantID   int64         `json:"variant_id"`
	ProductID   int64         `json:"product_id"`
	ProductName string        `json:"product_name"`
	Size        string        `json:"size"`
	InStock     bool          `json:"in_stock"`
	Quote       pricing.Quote `json:"quote"`
	AddedAt     time.Time     `json:"added_at"`
}

type Store interface {
	Add(ctx context.Context, userID, variantID int64) error
	Remove(ctx context.Context, userID, variantID int64) error
	List(ctx context.Context, userID int64) ([]Entry, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Add(ctx context.Context, userID, variantID int64) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO wishlist_items (user_id, variant_id)
VALUES ($1, $2)
ON CONFLICT (user_id, variant_id) DO NOTHING
`, userID, variantID)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, userID, variantID int64) error {
	tag, err := r.db.Exec(ctx, `
DELETE FROM wishlist_items WHERE user_id = $1 AND variant_id = $2
`, userID, variantID)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, userID int64) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
SELECT w.id, w.created_at,
       v.id, v.size, v.stock, v.base_price, v.variant_offer,
       p.id, p.name, p.regular_price, p.product_offer,
       c.category_offer, b.brand_offer
FROM wishlist_items w
JOIN product_variants v ON v.id = w.variant_id
JOIN products p ON p.id = v.product_id
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN brands b ON b.id = p.brand_id
WHERE w.user_id = $1 AND p.is_deleted = false
ORDER BY w.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			stock      int
			basePrice  float64
			varOffer   float64
			regular    float64
			prodOffer  float64
			catOffer   *float64
			brandOffer *float64
		)
		if err := rows.Scan(&e.ID, &e.AddedAt,
			&e.VariantID, &e.Size, &stock, &basePrice, &varOffer,
			&e.ProductID, &e.ProductName, &regular, &prodOffer,
			&catOffer, &brandOffer); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}

		e.InStock = stock > 0
		e.Quote = pricing.Resolve(
			pricing.Product{RegularPrice: regular, ProductOffer: prodOffer, CategoryOffer: catOffer, BrandOffer: brandOffer},
			pricing.Variant{Size: e.Size, Stock: stock, BasePrice: basePrice, VariantOffer: varOffer},
		)
		out = append(out, e)
	}
	return out, rows.Err()
}
