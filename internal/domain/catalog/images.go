package catalog

import (
	"context"
	"fmt"
)

func (r *Repository) AddProductImage(ctx context.Context, img *ProductImage) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO product_images (product_id, url, is_primary, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`, img.ProductID, img.URL, img.IsPrimary, img.SortOrder).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("add product image: %w", err)
	}
	return nil
}

func (r *Repository) ListProductImages(ctx context.Context, productID int64) ([]*ProductImage, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, product_id, url, is_primary, sort_order, created_at
FROM product_images
WHERE product_id = $1
ORDER BY sort_order, id
`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	var out []*ProductImage
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.IsPrimary, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteProductImage(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
