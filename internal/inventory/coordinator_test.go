package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore implements the same conditional-decrement contract as PGStore,
// serialized with a mutex instead of a row guard.
type memStore struct {
	mu          sync.Mutex
	stock       map[string]int
	price       map[string]int64
	discounted  map[string]int64
	failRelease map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		stock:       map[string]int{},
		price:       map[string]int64{},
		discounted:  map[string]int64{},
		failRelease: map[string]error{},
	}
}

func (s *memStore) add(id string, stock int, priceCents int64) {
	s.stock[id] = stock
	s.price[id] = priceCents
}

func (s *memStore) TryReserve(_ context.Context, productID string, qty int) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	avail, ok := s.stock[productID]
	if !ok {
		return Reservation{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if avail < qty {
		return Reservation{}, &InsufficientStockError{ProductID: productID, Requested: qty, Available: avail}
	}
	s.stock[productID] = avail - qty

	price := s.price[productID]
	if d, ok := s.discounted[productID]; ok && d < price {
		price = d
	}
	return Reservation{ProductID: productID, Quantity: qty, UnitPriceCents: price, NewQuantity: avail - qty}, nil
}

func (s *memStore) Release(_ context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failRelease[productID]; err != nil {
		return err
	}
	if _, ok := s.stock[productID]; !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	s.stock[productID] += qty
	return nil
}

func testCoordinator(s Store) *Coordinator {
	return NewCoordinator(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReserveValidation(t *testing.T) {
	c := testCoordinator(newMemStore())
	ctx := context.Background()

	_, err := c.Reserve(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = c.Reserve(ctx, []Line{{ProductID: "p1", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = c.Reserve(ctx, []Line{{ProductID: "p1", Quantity: -3}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = c.Reserve(ctx, []Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	})
	assert.ErrorIs(t, err, ErrDuplicateProduct)
}

func TestReserveSubtotalFromStorePrices(t *testing.T) {
	s := newMemStore()
	s.add("p1", 10, 5000)
	s.add("p2", 10, 1250)
	s.discounted["p2"] = 1000
	c := testCoordinator(s)

	res, err := c.Reserve(context.Background(), []Line{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2*5000+3*1000), res.SubtotalCents)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, int64(5000), res.Lines[0].UnitPriceCents)
	assert.Equal(t, int64(1000), res.Lines[1].UnitPriceCents)
	assert.Equal(t, 8, s.stock["p1"])
	assert.Equal(t, 7, s.stock["p2"])
}

func TestReserveRollsBackOnInsufficientStock(t *testing.T) {
	s := newMemStore()
	s.add("a", 5, 100)
	s.add("b", 3, 100)
	c := testCoordinator(s)

	_, err := c.Reserve(context.Background(), []Line{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 10},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "b", stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Available)

	// a's decrement must have been undone
	assert.Equal(t, 5, s.stock["a"])
	assert.Equal(t, 3, s.stock["b"])
}

func TestReserveRollsBackOnUnknownProduct(t *testing.T) {
	s := newMemStore()
	s.add("a", 5, 100)
	c := testCoordinator(s)

	_, err := c.Reserve(context.Background(), []Line{
		{ProductID: "a", Quantity: 1},
		{ProductID: "ghost", Quantity: 1},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 5, s.stock["a"])
}

func TestReleaseReturnsStock(t *testing.T) {
	s := newMemStore()
	s.add("p1", 10, 100)
	c := testCoordinator(s)

	res, err := c.Reserve(context.Background(), []Line{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, 7, s.stock["p1"])

	require.NoError(t, c.Release(context.Background(), res.Lines))
	assert.Equal(t, 10, s.stock["p1"])
}

func TestReleaseFailureIsInconsistency(t *testing.T) {
	s := newMemStore()
	s.add("p1", 10, 100)
	s.failRelease["p1"] = errors.New("connection reset")
	c := testCoordinator(s)

	res, err := c.Reserve(context.Background(), []Line{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)

	err = c.Release(context.Background(), res.Lines)
	var drift *InconsistencyError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "p1", drift.ProductID)
	assert.Equal(t, 3, drift.Quantity)
}

func TestReserveRollbackFailureJoinsInconsistency(t *testing.T) {
	s := newMemStore()
	s.add("a", 5, 100)
	s.add("b", 1, 100)
	s.failRelease["a"] = errors.New("connection reset")
	c := testCoordinator(s)

	_, err := c.Reserve(context.Background(), []Line{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 10},
	})

	// The rejection is still visible, but the failed undo must be joined
	// onto it so callers never mistake this for a clean no-change failure.
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "b", stockErr.ProductID)

	var drift *InconsistencyError
	require.ErrorAs(t, err, &drift)
	assert.Equal(t, "a", drift.ProductID)
	assert.Equal(t, 2, drift.Quantity)

	// a's decrement really is still in place
	assert.Equal(t, 3, s.stock["a"])
}

func TestConcurrentContentionExactlyOneWins(t *testing.T) {
	s := newMemStore()
	s.add("p1", 10, 100)
	c := testCoordinator(s)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Reserve(context.Background(), []Line{{ProductID: "p1", Quantity: 6}})
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			var stockErr *InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two contenders must be rejected")
	assert.Equal(t, 4, s.stock["p1"])
}

func TestStockNeverNegativeUnderLoad(t *testing.T) {
	s := newMemStore()
	s.add("p1", 25, 100)
	c := testCoordinator(s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Reserve(context.Background(), []Line{{ProductID: "p1", Quantity: 3}})
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, s.stock["p1"], 0)
	// 8 reservations of 3 fit into 25; the 9th must have been rejected.
	assert.Equal(t, 1, s.stock["p1"])
}
