package fanout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu       sync.Mutex
	ids      []int64
	failIDs  map[int64]bool
	recached map[int64]int

	inFlight    int64
	maxInFlight int64
}

func newFakeStore(ids ...int64) *fakeStore {
	return &fakeStore{ids: ids, failIDs: map[int64]bool{}, recached: map[int64]int{}}
}

func (f *fakeStore) ProductIDsByBrand(ctx context.Context, brandID int64) ([]int64, error) {
	return f.ids, nil
}

func (f *fakeStore) ProductIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	return f.ids, nil
}

func (f *fakeStore) RecachePrices(ctx context.Context, productID int64) error {
	cur := atomic.AddInt64(&f.inFlight, 1)
	for {
		max := atomic.LoadInt64(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt64(&f.maxInFlight, max, cur) {
			break
		}
	}
	defer atomic.AddInt64(&f.inFlight, -1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[productID] {
		return errors.New("storage unavailable")
	}
	f.recached[productID]++
	return nil
}

func TestRefreshBrandRecachesEveryProduct(t *testing.T) {
	store := newFakeStore(1, 2, 3, 4, 5)
	r := New(store, zap.NewNop().Sugar(), 2)

	res, err := r.RefreshBrand(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, Result{Refreshed: 5, Failed: 0}, res)
	assert.Len(t, store.recached, 5)
}

func TestRefreshContinuesPastFailures(t *testing.T) {
	store := newFakeStore(1, 2, 3, 4)
	store.failIDs[2] = true
	store.failIDs[4] = true
	r := New(store, zap.NewNop().Sugar(), 3)

	res, err := r.RefreshCategory(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, Result{Refreshed: 2, Failed: 2}, res)
	assert.Equal(t, 1, store.recached[1])
	assert.Equal(t, 1, store.recached[3])
}

func TestRefreshBoundsConcurrency(t *testing.T) {
	ids := make([]int64, 64)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	store := newFakeStore(ids...)
	r := New(store, zap.NewNop().Sugar(), 3)

	_, err := r.RefreshBrand(context.Background(), 1)
	require.NoError(t, err)

	assert.LessOrEqual(t, store.maxInFlight, int64(3))
}

func TestRefreshIsIdempotent(t *testing.T) {
	store := newFakeStore(1, 2)
	r := New(store, zap.NewNop().Sugar(), 0)

	first, err := r.RefreshBrand(context.Background(), 9)
	require.NoError(t, err)
	second, err := r.RefreshBrand(context.Background(), 9)
	require.NoError(t, err)

	// rerunning converges: same result shape, every product recached again
	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.recached[1])
	assert.Equal(t, 2, store.recached[2])
}

func TestRefreshEmptyScope(t *testing.T) {
	store := newFakeStore()
	r := New(store, zap.NewNop().Sugar(), 4)

	res, err := r.RefreshBrand(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}
