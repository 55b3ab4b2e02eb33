package catalog

import (
	"context"
	"errors"
	"fmt"

	"pasal/internal/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	db dbx.Beginner
}

func NewRepository(db dbx.Beginner) *Repository {
	return &Repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) CreateBrand(ctx context.Context, b *Brand) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO brands (name, slug, brand_offer, is_active)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at
`, b.Name, b.Slug, b.BrandOffer, b.IsActive).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create brand: %w", err)
	}
	return nil
}

func (r *Repository) GetBrandByID(ctx context.Context, id int64) (*Brand, error) {
	var b Brand
	err := r.db.QueryRow(ctx, `
SELECT id, name, slug, brand_offer, is_active, is_deleted, created_at, updated_at
FROM brands
WHERE id = $1 AND is_deleted = false
`, id).Scan(&b.ID, &b.Name, &b.Slug, &b.BrandOffer, &b.IsActive, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &b, nil
}

func (r *Repository) ListBrands(ctx context.Context, includeInactive bool, limit, offset int) ([]*Brand, int, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, name, slug, brand_offer, is_active, is_deleted, created_at, updated_at,
       count(*) OVER() AS total
FROM brands
WHERE is_deleted = false
  AND (is_active OR $1)
ORDER BY name
LIMIT $2 OFFSET $3
`, includeInactive, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var out []*Brand
	total := 0
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.BrandOffer, &b.IsActive, &b.IsDeleted,
			&b.CreatedAt, &b.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan brand: %w", err)
		}
		out = append(out, &b)
	}
	return out, total, rows.Err()
}

func (r *Repository) UpdateBrand(ctx context.Context, b *Brand) error {
	tag, err := r.db.Exec(ctx, `
UPDATE brands
SET name = $2, slug = $3, is_active = $4, updated_at = now()
WHERE id = $1 AND is_deleted = false
`, b.ID, b.Name, b.Slug, b.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBrandOffer stores the new percentage and reports whether the value
// actually changed, so callers only kick off the price fan-out when it did.
func (r *Repository) SetBrandOffer(ctx context.Context, id int64, offer float64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
UPDATE brands
SET brand_offer = $2, updated_at = now()
WHERE id = $1 AND is_deleted = false AND brand_offer IS DISTINCT FROM $2
`, id, offer)
	if err != nil {
		return false, fmt.Errorf("set brand offer: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// unchanged value or missing brand: tell them apart
	var exists bool
	if err := r.db.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM brands WHERE id = $1 AND is_deleted = false)
`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("set brand offer: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

// SoftDeleteBrand hides the brand from availability checks. The row (and its
// offer value) stays readable for historical price audits.
func (r *Repository) SoftDeleteBrand(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
UPDATE brands
SET is_deleted = true, is_active = false, updated_at = now()
WHERE id = $1 AND is_deleted = false
`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
