// Package fanout refreshes cached variant prices after a brand or category
// offer edit. It is an explicit batch job, not a persistence hook: the offer
// update handlers invoke it directly (fire-and-forget) once the new value is
// committed.
//
// The job is best-effort and idempotent. Each product recache is a pure
// recomputation keyed off current offers, so re-running after a crash
// converges; a failed product is logged and counted, never aborts the rest.
package fanout

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Store is the slice of the catalog store the refresher needs.
type Store interface {
	ProductIDsByBrand(ctx context.Context, brandID int64) ([]int64, error)
	ProductIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error)
	RecachePrices(ctx context.Context, productID int64) error
}

// Result reports one fan-out run. Failed > 0 is a degraded-but-successful
// run from the offer editor's point of view.
type Result struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

const defaultWorkers = 4

type Refresher struct {
	store   Store
	log     *zap.SugaredLogger
	workers int
}

// New builds a refresher with bounded concurrency; workers < 1 falls back to
// the default. The bound keeps an offer edit on a large brand from hammering
// the pool with parallel re-saves.
func New(store Store, log *zap.SugaredLogger, workers int) *Refresher {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Refresher{store: store, log: log, workers: workers}
}

// RefreshBrand recaches every product of the brand.
func (r *Refresher) RefreshBrand(ctx context.Context, brandID int64) (Result, error) {
	ids, err := r.store.ProductIDsByBrand(ctx, brandID)
	if err != nil {
		return Result{}, err
	}
	return r.refresh(ctx, "brand", brandID, ids), nil
}

// RefreshCategory recaches every product of the category.
func (r *Refresher) RefreshCategory(ctx context.Context, categoryID int64) (Result, error) {
	ids, err := r.store.ProductIDsByCategory(ctx, categoryID)
	if err != nil {
		return Result{}, err
	}
	return r.refresh(ctx, "category", categoryID, ids), nil
}

func (r *Refresher) refresh(ctx context.Context, scope string, scopeID int64, ids []int64) Result {
	var (
		failed int64
		wg     sync.WaitGroup
		sem    = make(chan struct{}, r.workers)
	)

	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(productID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := r.store.RecachePrices(ctx, productID); err != nil {
				atomic.AddInt64(&failed, 1)
				r.log.Errorw("price recache failed",
					"scope", scope,
					"scope_id", scopeID,
					"product_id", productID,
					"error", err,
				)
			}
		}(id)
	}
	wg.Wait()

	res := Result{
		Refreshed: len(ids) - int(failed),
		Failed:    int(failed),
	}
	r.log.Infow("offer fan-out finished",
		"scope", scope,
		"scope_id", scopeID,
		"refreshed", res.Refreshed,
		"failed", res.Failed,
	)
	return res
}
