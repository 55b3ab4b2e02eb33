package store

import (
	"time"

	"pasal/internal/domain/carts"
	"pasal/internal/domain/catalog"
	"pasal/internal/domain/orders"
	"pasal/internal/domain/wishlist"

	"github.com/jackc/pgx/v5/pgxpool"
)

var QueryTimeoutDuration = time.Second * 5

// Storage aggregates the domain repositories behind their Store interfaces.
type Storage struct {
	Catalog  catalog.Store
	Carts    carts.Store
	Orders   orders.Store
	Wishlist wishlist.Store
}

func NewStorage(db *pgxpool.Pool, orderRefSalt string) (Storage, error) {
	refGen, err := orders.NewReferenceGenerator(orderRefSalt)
	if err != nil {
		return Storage{}, err
	}

	return Storage{
		Catalog:  catalog.NewRepository(db),
		Carts:    carts.NewRepository(db),
		Orders:   orders.NewRepository(db, refGen),
		Wishlist: wishlist.NewRepository(db),
	}, nil
}
