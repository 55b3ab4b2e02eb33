package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasal/internal/dbx"
	"pasal/internal/pricing"

	"github.com/jackc/pgx/v5"
)

func variantInputs(variants []Variant) []pricing.Variant {
	out := make([]pricing.Variant, len(variants))
	for i, v := range variants {
		out[i] = v.PricingInputs()
	}
	return out
}

// populateOffers loads the category/brand offer values for pricing when the
// product carries bare ids. Missing rows leave the ref nil; the resolver
// treats that as a zero offer. Soft-deleted refs still surface their offer
// value; it stays readable for price audits even when the ref is hidden
// from the storefront.
func (r *Repository) populateOffers(ctx context.Context, q dbx.Querier, p *Product) error {
	if p.CategoryID != nil && p.Category == nil {
		var c Category
		err := q.QueryRow(ctx, `
SELECT id, name, slug, category_offer, is_active, is_deleted, created_at, updated_at
FROM categories WHERE id = $1
`, *p.CategoryID).Scan(&c.ID, &c.Name, &c.Slug, &c.CategoryOffer, &c.IsActive, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// dangling ref, price without the category contribution
		case err != nil:
			return fmt.Errorf("populate category: %w", err)
		default:
			p.Category = &c
		}
	}
	if p.BrandID != nil && p.Brand == nil {
		var b Brand
		err := q.QueryRow(ctx, `
SELECT id, name, slug, brand_offer, is_active, is_deleted, created_at, updated_at
FROM brands WHERE id = $1
`, *p.BrandID).Scan(&b.ID, &b.Name, &b.Slug, &b.BrandOffer, &b.IsActive, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("populate brand: %w", err)
		default:
			p.Brand = &b
		}
	}
	return nil
}

// insertVariants writes the product's variant batch, caching each resolved
// final price as it goes (eager cache policy: every save rewrites the cache).
func (r *Repository) insertVariants(ctx context.Context, tx pgx.Tx, p *Product) error {
	in := p.PricingInputs()
	now := time.Now()

	for i := range p.Variants {
		v := &p.Variants[i]
		quote := pricing.Resolve(in, v.PricingInputs())

		err := tx.QueryRow(ctx, `
INSERT INTO product_variants
	(product_id, size, stock, base_price, variant_offer, final_price, final_price_updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at
`, p.ID, v.Size, v.Stock, v.BasePrice, v.VariantOffer, quote.FinalPrice, now).
			Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert variant %d: %w", i+1, err)
		}

		v.ProductID = p.ID
		fp := quote.FinalPrice
		at := now
		v.FinalPrice = &fp
		v.FinalPriceUpdatedAt = &at
	}
	return nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.populateOffers(ctx, tx, p); err != nil {
		return err
	}

	// A single offending variant aborts the whole save before any write.
	if err := pricing.ValidateVariantPricing(p.RegularPrice, variantInputs(p.Variants)); err != nil {
		return err
	}
	p.TotalStock = pricing.TotalStock(variantInputs(p.Variants))

	err = tx.QueryRow(ctx, `
INSERT INTO products
	(name, slug, description, regular_price, product_offer, total_stock, category_id, brand_id, is_listed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at
`, p.Name, p.Slug, p.Description, p.RegularPrice, p.ProductOffer, p.TotalStock,
		p.CategoryID, p.BrandID, p.IsListed).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create product: %w", err)
	}

	if err := r.insertVariants(ctx, tx, p); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateProduct replaces the variant batch wholesale: the admin form always
// submits the full set, so the old rows are dropped and reinserted.
func (r *Repository) UpdateProduct(ctx context.Context, p *Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.populateOffers(ctx, tx, p); err != nil {
		return err
	}
	if err := pricing.ValidateVariantPricing(p.RegularPrice, variantInputs(p.Variants)); err != nil {
		return err
	}
	p.TotalStock = pricing.TotalStock(variantInputs(p.Variants))

	tag, err := tx.Exec(ctx, `
UPDATE products
SET name = $2, slug = $3, description = $4, regular_price = $5, product_offer = $6,
    total_stock = $7, category_id = $8, brand_id = $9, is_listed = $10, updated_at = now()
WHERE id = $1 AND is_deleted = false
`, p.ID, p.Name, p.Slug, p.Description, p.RegularPrice, p.ProductOffer,
		p.TotalStock, p.CategoryID, p.BrandID, p.IsListed)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear variants: %w", err)
	}
	if err := r.insertVariants(ctx, tx, p); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) getProduct(ctx context.Context, q dbx.Querier, where string, arg any) (*Product, error) {
	var p Product
	err := q.QueryRow(ctx, `
SELECT id, name, slug, description, regular_price, product_offer, total_stock,
       category_id, brand_id, is_listed, is_deleted, created_at, updated_at
FROM products
WHERE `+where+` AND is_deleted = false
`, arg).Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.RegularPrice, &p.ProductOffer,
		&p.TotalStock, &p.CategoryID, &p.BrandID, &p.IsListed, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if err := r.populateOffers(ctx, q, &p); err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
SELECT id, product_id, size, stock, base_price, variant_offer,
       final_price, final_price_updated_at, created_at, updated_at
FROM product_variants
WHERE product_id = $1
ORDER BY id
`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Stock, &v.BasePrice, &v.VariantOffer,
			&v.FinalPrice, &v.FinalPriceUpdatedAt, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	return &p, rows.Err()
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	return r.getProduct(ctx, r.db, "id = $1", id)
}

func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getProduct(ctx, r.db, "slug = $1", slug)
}

// ListProductCards reads listing rows off the cached final prices (that is
// what the eager cache buys: no per-row resolution on the hot path). The
// product-level badge offer is still resolved in Go so the max/tie-break rule
// has a single home.
func (r *Repository) ListProductCards(ctx context.Context, categorySlug string, limit, offset int) ([]*ProductCard, int, error) {
	rows, err := r.db.Query(ctx, `
SELECT p.id, p.name, p.slug, p.regular_price, p.product_offer, p.total_stock,
       b.name, b.brand_offer,
       c.name, c.category_offer,
       COALESCE((SELECT avg(v.final_price) FROM product_variants v WHERE v.product_id = p.id), p.regular_price),
       (SELECT i.url FROM product_images i WHERE i.product_id = p.id AND i.is_primary LIMIT 1),
       count(*) OVER() AS total
FROM products p
LEFT JOIN brands b ON b.id = p.brand_id AND b.is_deleted = false AND b.is_active
LEFT JOIN categories c ON c.id = p.category_id AND c.is_deleted = false
WHERE p.is_deleted = false
  AND p.is_listed
  AND ($1 = '' OR c.slug = $1)
  AND (p.category_id IS NULL OR (c.id IS NOT NULL AND c.is_active))
ORDER BY p.created_at DESC
LIMIT $2 OFFSET $3
`, categorySlug, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list product cards: %w", err)
	}
	defer rows.Close()

	var out []*ProductCard
	total := 0
	for rows.Next() {
		var (
			card         ProductCard
			productOffer float64
			brandOffer   *float64
			catOffer     *float64
		)
		if err := rows.Scan(&card.ID, &card.Name, &card.Slug, &card.RegularPrice, &productOffer,
			&card.TotalStock, &card.BrandName, &brandOffer, &card.CategoryName, &catOffer,
			&card.AverageFinalPrice, &card.PrimaryImageURL, &total); err != nil {
			return nil, 0, fmt.Errorf("scan product card: %w", err)
		}

		// product-level badge: best offer ignoring per-variant ones
		quote := pricing.Resolve(pricing.Product{
			RegularPrice:  card.RegularPrice,
			ProductOffer:  productOffer,
			CategoryOffer: catOffer,
			BrandOffer:    brandOffer,
		}, pricing.Variant{})
		card.MaxOffer = quote.AppliedOffer

		out = append(out, &card)
	}
	return out, total, rows.Err()
}

func (r *Repository) SetProductOffer(ctx context.Context, id int64, offer float64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE products
SET product_offer = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false AND product_offer IS DISTINCT FROM $2
`, id, offer)
	if err != nil {
		return false, fmt.Errorf("set product offer: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND is_deleted = false)
`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("set product offer: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *Repository) SoftDeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
UPDATE products
SET is_deleted = true, is_listed = false, updated_at = now()
WHERE id = $1 AND is_deleted = false
`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) productIDs(ctx context.Context, where string, arg any) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
SELECT id FROM products WHERE `+where+` AND is_deleted = false ORDER BY id
`, arg)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) ProductIDsByBrand(ctx context.Context, brandID int64) ([]int64, error) {
	return r.productIDs(ctx, "brand_id = $1", brandID)
}

func (r *Repository) ProductIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	return r.productIDs(ctx, "category_id = $1", categoryID)
}

// RecachePrices is the offer fan-out's unit of work: recompute one product's
// cached variant prices from the offers in effect right now. Pure
// recomputation, so re-running it any number of times converges.
func (r *Repository) RecachePrices(ctx context.Context, productID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := r.getProduct(ctx, tx, "id = $1", productID)
	if err != nil {
		return err
	}

	in := p.PricingInputs()
	now := time.Now()
	for _, v := range p.Variants {
		quote := pricing.Resolve(in, v.PricingInputs())
		if _, err := tx.Exec(ctx, `
UPDATE product_variants
SET final_price = $2, final_price_updated_at = $3, updated_at = now()
WHERE id = $1
`, v.ID, quote.FinalPrice, now); err != nil {
			return fmt.Errorf("recache variant %d: %w", v.ID, err)
		}
	}

	return tx.Commit(ctx)
}
