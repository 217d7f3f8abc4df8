package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrNotFound = errors.New("order not found")
var ErrBadTransition = errors.New("invalid payment status transition")

// Create persists the order and its items in one transaction. The order
// arrives fully priced; nothing is recomputed here.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(
			id, user_id, subtotal_cents,
			ship_carrier, ship_to_office, ship_to_office_id, ship_city, ship_address1,
			ship_price_cents, ship_tracking,
			pay_method, pay_status, pay_cod_fee_cents, pay_provider, pay_provider_intent_id,
			grand_total_cents, currency, phone, customer_name, email, notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`,
		o.ID, o.UserID, o.SubtotalCents,
		o.Shipping.Carrier, o.Shipping.ToOffice, o.Shipping.ToOfficeID, o.Shipping.City, o.Shipping.Address1,
		o.Shipping.PriceCents, o.Shipping.Tracking,
		o.Payment.Method, o.Payment.Status, o.Payment.CODFeeCents, o.Payment.Provider, o.Payment.ProviderIntentID,
		o.GrandTotalCents, o.Currency, o.Phone, o.CustomerName, o.Email, o.Notes, o.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, it := range o.Items {
		// line_no preserves cart order across reloads
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, line_no, product_id, quantity, unit_price_cents)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, i+1, it.ProductID, it.Quantity, it.UnitPriceCents,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListByUser returns the caller's orders, newest first, items populated with
// product names.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `WHERE o.user_id = $1`, userID)
}

// ListAll is the admin view: every order, with the placing user's email.
func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, ``)
}

func (r *Repo) list(ctx context.Context, where string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.user_id, COALESCE(u.email, ''), o.subtotal_cents,
		       o.ship_carrier, o.ship_to_office, o.ship_to_office_id, o.ship_city, o.ship_address1,
		       o.ship_price_cents, o.ship_tracking,
		       o.pay_method, o.pay_status, o.pay_cod_fee_cents, o.pay_provider, o.pay_provider_intent_id,
		       o.grand_total_cents, o.currency, o.phone, o.customer_name, o.email, o.notes, o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		`+where+`
		ORDER BY o.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	index := map[string]int{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.UserEmail, &o.SubtotalCents,
			&o.Shipping.Carrier, &o.Shipping.ToOffice, &o.Shipping.ToOfficeID, &o.Shipping.City, &o.Shipping.Address1,
			&o.Shipping.PriceCents, &o.Shipping.Tracking,
			&o.Payment.Method, &o.Payment.Status, &o.Payment.CODFeeCents, &o.Payment.Provider, &o.Payment.ProviderIntentID,
			&o.GrandTotalCents, &o.Currency, &o.Phone, &o.CustomerName, &o.Email, &o.Notes, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Shipping.Currency = o.Currency
		o.Payment.Currency = o.Currency
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.DB.Query(ctx, `
		SELECT i.order_id, i.product_id, COALESCE(p.name, ''), i.quantity, i.unit_price_cents
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.line_no`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it OrderItem
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		i := index[orderID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, itemRows.Err()
}

// UpdatePaymentStatus is the hook for fulfillment collaborators. The
// transition table is enforced under a row lock.
func (r *Repo) UpdatePaymentStatus(ctx context.Context, orderID string, to PaymentStatus) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from PaymentStatus
	err = tx.QueryRow(ctx, `SELECT pay_status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	if err != nil {
		return err
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, from, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET pay_status=$2 WHERE id=$1`, orderID, to); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetTracking records the carrier tracking number once the shipment exists.
func (r *Repo) SetTracking(ctx context.Context, orderID, tracking string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET ship_tracking=$2 WHERE id=$1`, orderID, tracking)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", ErrNotFound, orderID)
	}
	return nil
}
