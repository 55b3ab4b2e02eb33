package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func (r *Repository) CreateCategory(ctx context.Context, c *Category) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO categories (name, slug, category_offer, is_active)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at
`, c.Name, c.Slug, c.CategoryOffer, c.IsActive).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `
SELECT id, name, slug, category_offer, is_active, is_deleted, created_at, updated_at
FROM categories
WHERE id = $1 AND is_deleted = false
`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.CategoryOffer, &c.IsActive, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *Repository) ListCategories(ctx context.Context, includeInactive bool, limit, offset int) ([]*Category, int, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, name, slug, category_offer, is_active, is_deleted, created_at, updated_at,
       count(*) OVER() AS total
FROM categories
WHERE is_deleted = false
  AND (is_active OR $1)
ORDER BY name
LIMIT $2 OFFSET $3
`, includeInactive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*Category
	total := 0
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CategoryOffer, &c.IsActive, &c.IsDeleted,
			&c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, total, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c *Category) error {
	tag, err := r.db.Exec(ctx, `
UPDATE categories
SET name = $2, slug = $3, is_active = $4, updated_at = now()
WHERE id = $1 AND is_deleted = false
`, c.ID, c.Name, c.Slug, c.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCategoryOffer mirrors SetBrandOffer: reports whether the stored
// percentage changed so the caller can decide on the fan-out.
func (r *Repository) SetCategoryOffer(ctx context.Context, id int64, offer float64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE categories
SET category_offer = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false AND category_offer IS DISTINCT FROM $2
`, id, offer)
	if err != nil {
		return false, fmt.Errorf("set category offer: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND is_deleted = false)
`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("set category offer: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *Repository) SoftDeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
UPDATE categories
SET is_deleted = true, is_active = false, updated_at = now()
WHERE id = $1 AND is_deleted = false
`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
