package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a reservation that could not be satisfied.
// The product record is left untouched when it is returned.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Reservation is the outcome of a successful conditional decrement. The unit
// price is the effective price (discounted when present and lower) at the
// instant the decrement was applied; callers freeze it into the order.
type Reservation struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
	NewQuantity    int
}

// Store is the single ownership boundary for stock mutation. Nothing outside
// this package writes stock_quantity or in_stock.
type Store interface {
	TryReserve(ctx context.Context, productID string, qty int) (Reservation, error)
	Release(ctx context.Context, productID string, qty int) error
}

// PGStore backs the reservation primitive with a conditional UPDATE, so two
// concurrent callers can never together take more than the available stock:
// the row guard runs inside the same statement as the decrement.
type PGStore struct {
	DB *pgxpool.Pool
}

func (s *PGStore) TryReserve(ctx context.Context, productID string, qty int) (Reservation, error) {
	row := s.DB.QueryRow(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
		    in_stock       = stock_quantity - $2 > 0,
		    updated_at     = now()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING LEAST(COALESCE(discounted_price_cents, price_cents), price_cents), stock_quantity
	`, productID, qty)

	res := Reservation{ProductID: productID, Quantity: qty}
	err := row.Scan(&res.UnitPriceCents, &res.NewQuantity)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, err
	}

	// The guard rejected the update: either the product is gone or the
	// stock is short. Re-read to tell the two apart.
	var available int
	err = s.DB.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return Reservation{}, err
	}
	return Reservation{}, &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
}

func (s *PGStore) Release(ctx context.Context, productID string, qty int) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
		    in_stock       = stock_quantity + $2 > 0,
		    updated_at     = now()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}
