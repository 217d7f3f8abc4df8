package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrDuplicateProduct = errors.New("duplicate product in cart")
)

// InconsistencyError means a compensation failed: stock was decremented but
// could not be returned. It signals data drift that needs manual
// reconciliation and must never be reported as an ordinary rejection.
type InconsistencyError struct {
	ProductID string
	Quantity  int
	Cause     error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("stock drift: %d units of product %s decremented but not returned: %v",
		e.Quantity, e.ProductID, e.Cause)
}

func (e *InconsistencyError) Unwrap() error { return e.Cause }

// Line is one cart item as submitted by the caller.
type Line struct {
	ProductID string
	Quantity  int
}

// PricedLine carries the unit-price snapshot taken while reserving.
type PricedLine struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// Result is a fully reserved cart: every line decremented, subtotal computed
// from the authoritative prices read during the decrements.
type Result struct {
	SubtotalCents int64
	Lines         []PricedLine
}

// Coordinator turns per-product conditional decrements into an all-or-nothing
// unit over the whole cart. Product rows are independent, so there is no
// multi-row lock; instead a failure after partial progress is compensated by
// returning the already-reserved quantities.
type Coordinator struct {
	store Store
	log   *slog.Logger
}

func NewCoordinator(store Store, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, log: log}
}

// ValidateLines rejects malformed carts before any store access.
func ValidateLines(items []Line) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: empty product id", ErrProductNotFound)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: product %s", ErrInvalidQuantity, it.ProductID)
		}
		if seen[it.ProductID] {
			return fmt.Errorf("%w: %s", ErrDuplicateProduct, it.ProductID)
		}
		seen[it.ProductID] = true
	}
	return nil
}

// Reserve decrements stock for every line, in the order given. If any line
// fails, every earlier decrement from this call is undone before the error
// is returned, so no stock change is visible unless all lines succeeded.
// When that undo itself fails, the drift is joined onto the original error:
// the caller must never see a plain rejection while stock is still missing.
func (c *Coordinator) Reserve(ctx context.Context, items []Line) (Result, error) {
	if err := ValidateLines(items); err != nil {
		return Result{}, err
	}

	var res Result
	for i, it := range items {
		r, err := c.store.TryReserve(ctx, it.ProductID, it.Quantity)
		if err != nil {
			if rbErr := c.release(ctx, items[:i]); rbErr != nil {
				c.log.Error("reservation rollback incomplete", "err", rbErr)
				return Result{}, errors.Join(err, rbErr)
			}
			return Result{}, err
		}
		res.SubtotalCents += r.UnitPriceCents * int64(it.Quantity)
		res.Lines = append(res.Lines, PricedLine{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: r.UnitPriceCents,
		})
	}
	return res, nil
}

// Release returns every line's quantity to the store. Used to reverse a
// completed reservation when a later placement step fails.
func (c *Coordinator) Release(ctx context.Context, lines []PricedLine) error {
	items := make([]Line, len(lines))
	for i, l := range lines {
		items[i] = Line{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return c.release(ctx, items)
}

func (c *Coordinator) release(ctx context.Context, items []Line) error {
	// Runs even when the request context was cancelled: a cancelled
	// placement must not leave a dangling reservation.
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if err := c.store.Release(ctx, it.ProductID, it.Quantity); err != nil {
			errs = append(errs, &InconsistencyError{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Cause:     err,
			})
		}
	}
	return errors.Join(errs...)
}
