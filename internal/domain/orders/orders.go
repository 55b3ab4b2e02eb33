package orders

import (
	"context"
	"errors"
	"fmt"

	"pasal/internal/dbx"
	"pasal/internal/pricing"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotFound      = errors.New("order not found")
	ErrNotCancelable = errors.New("order can no longer be cancelled")
	ErrOutOfStock    = errors.New("not enough stock to place the order")
)

type Repository struct {
	db  dbx.Beginner
	ref *ReferenceGenerator
}

func NewRepository(db dbx.Beginner, ref *ReferenceGenerator) *Repository {
	return &Repository{db: db, ref: ref}
}

// CreateFromCart converts the active cart into an order inside one
// transaction: price every line through the resolver against current offers,
// decrement stock with a guard, snapshot the quotes into order_items, mark
// the cart converted. Any failure rolls the whole checkout back.
func (r *Repository) CreateFromCart(ctx context.Context, userID int64) (*Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cartID int64
	err = tx.QueryRow(ctx, `
SELECT id FROM carts
WHERE user_id = $1 AND status = 'active'
  AND (expires_at IS NULL OR expires_at > now())
FOR UPDATE
`, userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("lock cart: %w", err)
	}

	rows, err := tx.Query(ctx, `
SELECT v.id, v.size, v.base_price, v.variant_offer, v.stock,
       p.name, p.regular_price, p.product_offer,
       c.category_offer, b.brand_offer,
       ci.quantity
FROM cart_items ci
JOIN product_variants v ON v.id = ci.variant_id
JOIN products p ON p.id = v.product_id
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN brands b ON b.id = p.brand_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at
FOR UPDATE OF v
`, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}

	var items []OrderItem
	var subtotal, discount float64
	for rows.Next() {
		var (
			variantID  int64
			size       string
			basePrice  float64
			varOffer   float64
			stock      int
			name       string
			regular    float64
			prodOffer  float64
			catOffer   *float64
			brandOffer *float64
			qty        int
		)
		if err := rows.Scan(&variantID, &size, &basePrice, &varOffer, &stock,
			&name, &regular, &prodOffer, &catOffer, &brandOffer, &qty); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		if stock < qty {
			rows.Close()
			return nil, ErrOutOfStock
		}

		quote := pricing.Resolve(
			pricing.Product{RegularPrice: regular, ProductOffer: prodOffer, CategoryOffer: catOffer, BrandOffer: brandOffer},
			pricing.Variant{Size: size, BasePrice: basePrice, VariantOffer: varOffer},
		)

		vid := variantID
		items = append(items, OrderItem{
			VariantID:    &vid,
			ProductName:  name,
			Size:         size,
			Quantity:     qty,
			BasePrice:    quote.BasePrice,
			AppliedOffer: quote.AppliedOffer,
			OfferType:    quote.OfferType,
			UnitPrice:    quote.FinalPrice,
			LineTotal:    quote.FinalPrice * float64(qty),
		})
		subtotal += quote.BasePrice * float64(qty)
		discount += (quote.BasePrice - quote.FinalPrice) * float64(qty)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cart lines: %w", err)
	}
	rows.Close()

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order := Order{
		UserID:   userID,
		Status:   "placed",
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id, reference, status, subtotal, discount, total)
VALUES ($1, '', $2, $3, $4, $5)
RETURNING id, created_at, updated_at
`, order.UserID, order.Status, order.Subtotal, order.Discount, order.Total).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order.Reference, err = r.ref.Generate(order.ID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET reference = $2 WHERE id = $1`, order.ID, order.Reference); err != nil {
		return nil, fmt.Errorf("set order reference: %w", err)
	}

	for i := range items {
		it := &items[i]
		it.OrderID = order.ID
		err := tx.QueryRow(ctx, `
INSERT INTO order_items
	(order_id, variant_id, product_name, size, quantity, base_price, applied_offer, offer_type, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id
`, it.OrderID, it.VariantID, it.ProductName, it.Size, it.Quantity,
			it.BasePrice, it.AppliedOffer, it.OfferType, it.UnitPrice, it.LineTotal).Scan(&it.ID)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}

		tag, err := tx.Exec(ctx, `
UPDATE product_variants SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
`, *it.VariantID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrOutOfStock
		}

		// keep the denormalized product total in step with the variant rows
		if _, err := tx.Exec(ctx, `
UPDATE products p
SET total_stock = (SELECT COALESCE(sum(stock), 0) FROM product_variants WHERE product_id = p.id),
    updated_at = now()
WHERE p.id = (SELECT product_id FROM product_variants WHERE id = $1)
`, *it.VariantID); err != nil {
			return nil, fmt.Errorf("refresh total stock: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
UPDATE carts SET status = 'converted', updated_at = now() WHERE id = $1
`, cartID); err != nil {
		return nil, fmt.Errorf("convert cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return &order, nil
}

func (r *Repository) GetByReference(ctx context.Context, reference string) (*OrderDetail, error) {
	var d OrderDetail
	err := r.db.QueryRow(ctx, `
SELECT id, user_id, reference, status, subtotal, discount, total, created_at, updated_at
FROM orders WHERE reference = $1
`, reference).Scan(&d.Order.ID, &d.Order.UserID, &d.Order.Reference, &d.Order.Status,
		&d.Order.Subtotal, &d.Order.Discount, &d.Order.Total, &d.Order.CreatedAt, &d.Order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
SELECT id, order_id, variant_id, product_name, size, quantity,
       base_price, applied_offer, offer_type, unit_price, line_total
FROM order_items
WHERE order_id = $1
ORDER BY id
`, d.Order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.ProductName, &it.Size, &it.Quantity,
			&it.BasePrice, &it.AppliedOffer, &it.OfferType, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		d.Items = append(d.Items, it)
	}
	return &d, rows.Err()
}

func (r *Repository) listOrders(ctx context.Context, where string, args []any, limit, offset int) ([]Order, int, error) {
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, `
SELECT id, user_id, reference, status, subtotal, discount, total, created_at, updated_at,
       count(*) OVER() AS total_rows
FROM orders
WHERE `+where+`
ORDER BY created_at DESC
LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	total := 0
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Reference, &o.Status, &o.Subtotal, &o.Discount,
			&o.Total, &o.CreatedAt, &o.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error) {
	return r.listOrders(ctx, "user_id = $1", []any{userID}, limit, offset)
}

func (r *Repository) ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	return r.listOrders(ctx, "($1 = '' OR status = $1)", []any{status}, limit, offset)
}

// Cancel restocks the order's variants and flips the status. Only freshly
// placed orders qualify.
func (r *Repository) Cancel(ctx context.Context, userID, orderID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `
SELECT status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE
`, orderID, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}
	if status != "placed" {
		return ErrNotCancelable
	}

	if _, err := tx.Exec(ctx, `
UPDATE product_variants v
SET stock = v.stock + oi.quantity, updated_at = now()
FROM order_items oi
WHERE oi.order_id = $1 AND oi.variant_id = v.id
`, orderID); err != nil {
		return fmt.Errorf("restock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
UPDATE products p
SET total_stock = (SELECT COALESCE(sum(stock), 0) FROM product_variants WHERE product_id = p.id),
    updated_at = now()
WHERE p.id IN (
	SELECT v.product_id FROM order_items oi
	JOIN product_variants v ON v.id = oi.variant_id
	WHERE oi.order_id = $1
)
`, orderID); err != nil {
		return fmt.Errorf("refresh total stock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
UPDATE orders SET status = 'cancelled', updated_at = now() WHERE id = $1
`, orderID); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	tag, err := r.db.Exec(ctx, `
UPDATE orders SET status = $2, updated_at = now() WHERE id = $1
`, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
