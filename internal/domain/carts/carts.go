package carts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasal/internal/dbx"
	"pasal/internal/pricing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrVariantNotFound = errors.New("variant not found or unavailable")
	ErrInsufficient    = errors.New("not enough stock")
)

type Repository struct {
	db  dbx.Beginner
	ttl time.Duration
}

func NewRepository(db dbx.Beginner) *Repository {
	return &Repository{db: db, ttl: 7 * 24 * time.Hour}
}

// EnsureActive returns the user's current active cart, creating one when
// missing. A UNIQUE partial index on (user_id) WHERE status = 'active' keeps
// concurrent callers from racing in two carts; the loser fetches the winner.
func (r *Repository) EnsureActive(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
SELECT id FROM carts
WHERE user_id = $1 AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
`, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("select cart: %w", err)
	}

	err = r.db.QueryRow(ctx, `
INSERT INTO carts (user_id, status, expires_at)
VALUES ($1, 'active', $2)
RETURNING id
`, userID, time.Now().Add(r.ttl)).Scan(&id)
	if err == nil {
		return id, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// lost the race; take the cart the other request created
		if err := r.db.QueryRow(ctx, `
SELECT id FROM carts WHERE user_id = $1 AND status = 'active'
`, userID).Scan(&id); err != nil {
			return 0, fmt.Errorf("select racing cart: %w", err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("create cart: %w", err)
}

func (r *Repository) AddItem(ctx context.Context, userID, variantID int64, qty int) error {
	if qty < 1 {
		qty = 1
	}

	cartID, err := r.EnsureActive(ctx, userID)
	if err != nil {
		return err
	}

	var stock int
	err = r.db.QueryRow(ctx, `
SELECT v.stock
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1 AND p.is_deleted = false AND p.is_listed
`, variantID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVariantNotFound
		}
		return fmt.Errorf("check variant: %w", err)
	}
	if stock < qty {
		return ErrInsufficient
	}

	_, err = r.db.Exec(ctx, `
INSERT INTO cart_items (cart_id, variant_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
`, cartID, variantID, qty)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *Repository) UpdateItemQty(ctx context.Context, userID, itemID int64, qty int) error {
	if qty < 1 {
		return r.RemoveItem(ctx, userID, itemID)
	}

	tag, err := r.db.Exec(ctx, `
UPDATE cart_items ci
SET quantity = $3, updated_at = now()
FROM carts c
WHERE ci.id = $2 AND ci.cart_id = c.id AND c.user_id = $1 AND c.status = 'active'
`, userID, itemID, qty)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, userID, itemID int64) error {
	tag, err := r.db.Exec(ctx, `
DELETE FROM cart_items ci
USING carts c
WHERE ci.id = $2 AND ci.cart_id = c.id AND c.user_id = $1 AND c.status = 'active'
`, userID, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
DELETE FROM cart_items ci
USING carts c
WHERE ci.cart_id = c.id AND c.user_id = $1 AND c.status = 'active'
`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// GetView loads the cart with every pricing input and resolves each line in
// Go. Prices are never read from the variant cache here: the cart must show
// the offers in effect at view time.
func (r *Repository) GetView(ctx context.Context, userID int64) (*View, error) {
	cartID, err := r.EnsureActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	var view View
	err = r.db.QueryRow(ctx, `
SELECT id, user_id, guest_token, status, expires_at, created_at, updated_at
FROM carts WHERE id = $1
`, cartID).Scan(&view.Cart.ID, &view.Cart.UserID, &view.Cart.GuestToken, &view.Cart.Status,
		&view.Cart.ExpiresAt, &view.Cart.CreatedAt, &view.Cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	rows, err := r.db.Query(ctx, `
SELECT ci.id, ci.quantity,
       v.id, v.size, v.stock, v.base_price, v.variant_offer,
       p.id, p.name, p.regular_price, p.product_offer,
       c.category_offer, b.brand_offer
FROM cart_items ci
JOIN product_variants v ON v.id = ci.variant_id
JOIN products p ON p.id = v.product_id
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN brands b ON b.id = p.brand_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at
`, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line       Line
			basePrice  float64
			varOffer   float64
			regular    float64
			prodOffer  float64
			catOffer   *float64
			brandOffer *float64
		)
		if err := rows.Scan(&line.ItemID, &line.Quantity,
			&line.VariantID, &line.Size, &line.Stock, &basePrice, &varOffer,
			&line.ProductID, &line.ProductName, &regular, &prodOffer,
			&catOffer, &brandOffer); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}

		line.Quote = pricing.Resolve(
			pricing.Product{
				RegularPrice:  regular,
				ProductOffer:  prodOffer,
				CategoryOffer: catOffer,
				BrandOffer:    brandOffer,
			},
			pricing.Variant{Size: line.Size, Stock: line.Stock, BasePrice: basePrice, VariantOffer: varOffer},
		)
		line.LineTotal = line.Quote.FinalPrice * float64(line.Quantity)
		view.Total += line.LineTotal
		view.Lines = append(view.Lines, line)
	}
	return &view, rows.Err()
}

// MarkExpiredAsAbandoned frees up expired active carts so they stop blocking
// new cart creation. Returns how many were flipped.
func (r *Repository) MarkExpiredAsAbandoned(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE carts
SET status = 'abandoned', updated_at = now()
WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= now()
`)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned carts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) MarkConverted(ctx context.Context, cartID int64) error {
	_, err := r.db.Exec(ctx, `
UPDATE carts SET status = 'converted', updated_at = now() WHERE id = $1
`, cartID)
	if err != nil {
		return fmt.Errorf("mark cart converted: %w", err)
	}
	return nil
}
