package catalog

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

// Store is the data access abstraction for the catalog domain.
// Implemented by Repository over pgx.
type Store interface {
	// Brands
	CreateBrand(ctx context.Context, b *Brand) error
	GetBrandByID(ctx context.Context, id int64) (*Brand, error)
	ListBrands(ctx context.Context, includeInactive bool, limit, offset int) ([]*Brand, int, error)
	UpdateBrand(ctx context.Context, b *Brand) error
	SetBrandOffer(ctx context.Context, id int64, offer float64) (bool, error)
	SoftDeleteBrand(ctx context.Context, id int64) error

	// Categories
	CreateCategory(ctx context.Context, c *Category) error
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context, includeInactive bool, limit, offset int) ([]*Category, int, error)
	UpdateCategory(ctx context.Context, c *Category) error
	SetCategoryOffer(ctx context.Context, id int64, offer float64) (bool, error)
	SoftDeleteCategory(ctx context.Context, id int64) error

	// Products. Create/Update replace the variant batch wholesale, validate
	// variant pricing before touching any row, recompute total stock and
	// rewrite the cached final prices inside one transaction.
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProductCards(ctx context.Context, categorySlug string, limit, offset int) ([]*ProductCard, int, error)
	SetProductOffer(ctx context.Context, id int64, offer float64) (bool, error)
	SoftDeleteProduct(ctx context.Context, id int64) error

	// Offer fan-out support
	ProductIDsByBrand(ctx context.Context, brandID int64) ([]int64, error)
	ProductIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error)
	RecachePrices(ctx context.Context, productID int64) error

	// Product images
	AddProductImage(ctx context.Context, img *ProductImage) error
	ListProductImages(ctx context.Context, productID int64) ([]*ProductImage, error)
	DeleteProductImage(ctx context.Context, id int64) error
}
