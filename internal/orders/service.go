package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/markov84/MarkLight-Ltd/internal/inventory"
	"github.com/markov84/MarkLight-Ltd/internal/shipping"
)

var (
	// ErrInvalidRequest covers malformed carts and missing required fields.
	// Nothing has touched the store when it is returned.
	ErrInvalidRequest = errors.New("invalid order request")

	// ErrOrderRejected covers expected placement failures (out of stock,
	// unknown product, persist failure that was fully compensated). The
	// caller may retry; inventory is exactly as it was before the call.
	ErrOrderRejected = errors.New("order rejected")
)

// Reserver is the reservation coordinator as the service sees it.
type Reserver interface {
	Reserve(ctx context.Context, items []inventory.Line) (inventory.Result, error)
	Release(ctx context.Context, lines []inventory.PricedLine) error
}

// Recorder is the durable order ledger as the service sees it.
type Recorder interface {
	Create(ctx context.Context, o *Order) error
}

type ItemInput struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type ShippingInput struct {
	Carrier    string `json:"carrier"`
	ToOffice   *bool  `json:"toOffice"`
	ToOfficeID string `json:"toOfficeId"`
	City       string `json:"city"`
	Address1   string `json:"address1"`
}

type PaymentInput struct {
	Method   string `json:"method"`
	Provider string `json:"provider"`
}

type PlaceRequest struct {
	Items        []ItemInput   `json:"items"`
	Shipping     ShippingInput `json:"shipping"`
	Payment      PaymentInput  `json:"payment"`
	Phone        string        `json:"phone"`
	CustomerName string        `json:"customerName"`
	Email        string        `json:"email"`
	Notes        string        `json:"notes"`
}

// Service drives a placement attempt through
// validate -> reserve -> quote -> persist, with the failure contract:
// a reservation failure leaves inventory untouched, and a persist failure
// after a successful reservation is compensated by returning the reserved
// quantities before the error surfaces.
type Service struct {
	Reserver Reserver
	Store    Recorder
	Rates    shipping.RateTable
	Currency string
	Log      *slog.Logger
}

func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceRequest) (*Order, error) {
	carrier, toOffice, method, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, inventory.Line{ProductID: it.Product, Quantity: it.Quantity})
	}

	res, err := s.Reserver.Reserve(ctx, lines)
	if err != nil {
		// A failed reservation whose rollback also failed left stock
		// missing; that must not be presented as a retryable rejection.
		var drift *inventory.InconsistencyError
		if errors.As(err, &drift) {
			s.Log.Error("reservation failed with unrecovered stock", "user", userID, "err", err)
			return nil, err
		}
		var stockErr *inventory.InsufficientStockError
		if errors.As(err, &stockErr) || errors.Is(err, inventory.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrOrderRejected, err)
		}
		return nil, err
	}

	q := shipping.Calculate(s.Rates, carrier, toOffice, res.SubtotalCents, method)

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		SubtotalCents: res.SubtotalCents,
		Shipping: Shipping{
			Carrier:    carrier,
			ToOffice:   toOffice,
			ToOfficeID: req.Shipping.ToOfficeID,
			City:       req.Shipping.City,
			Address1:   req.Shipping.Address1,
			PriceCents: q.ShippingCents,
			Currency:   s.Currency,
		},
		Payment: Payment{
			Method:      method,
			Status:      PaymentPending,
			CODFeeCents: q.CODFeeCents,
			Currency:    s.Currency,
			Provider:    req.Payment.Provider,
		},
		GrandTotalCents: q.GrandTotalCents,
		Currency:        s.Currency,
		Phone:           req.Phone,
		CustomerName:    req.CustomerName,
		Email:           req.Email,
		Notes:           req.Notes,
		CreatedAt:       time.Now().UTC(),
	}
	for _, l := range res.Lines {
		o.Items = append(o.Items, OrderItem{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}

	if err := s.Store.Create(ctx, o); err != nil {
		if relErr := s.Reserver.Release(ctx, res.Lines); relErr != nil {
			// Stock was decremented and could not be returned: data
			// drift that needs manual reconciliation. Never downgrade
			// this to an ordinary rejection.
			s.Log.Error("order persist failed and stock compensation failed",
				"order_id", o.ID, "user_id", userID,
				"persist_err", err, "compensation_err", relErr)
			return nil, fmt.Errorf("order persist failed with unrecovered stock: %w", errors.Join(err, relErr))
		}
		s.Log.Warn("order persist failed, reservation compensated",
			"order_id", o.ID, "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: order could not be saved: %v", ErrOrderRejected, err)
	}

	return o, nil
}

// validate normalizes defaults (carrier econt, delivery to office, payment
// cash on delivery) and rejects malformed requests before any store access.
func (s *Service) validate(req PlaceRequest) (shipping.Carrier, bool, shipping.PaymentMethod, error) {
	lines := make([]inventory.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, inventory.Line{ProductID: it.Product, Quantity: it.Quantity})
	}
	if err := inventory.ValidateLines(lines); err != nil {
		return "", false, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	carrier := shipping.Carrier(req.Shipping.Carrier)
	switch carrier {
	case "":
		carrier = shipping.CarrierEcont
	case shipping.CarrierEcont, shipping.CarrierSpeedy, shipping.CarrierOther:
	default:
		return "", false, "", fmt.Errorf("%w: unknown carrier %q", ErrInvalidRequest, req.Shipping.Carrier)
	}

	toOffice := true
	if req.Shipping.ToOffice != nil {
		toOffice = *req.Shipping.ToOffice
	}

	method := shipping.PaymentMethod(req.Payment.Method)
	switch method {
	case "":
		method = shipping.MethodCOD
	case shipping.MethodCard, shipping.MethodCOD, shipping.MethodBank:
	default:
		return "", false, "", fmt.Errorf("%w: unknown payment method %q", ErrInvalidRequest, req.Payment.Method)
	}

	if req.CustomerName == "" || req.Phone == "" {
		return "", false, "", fmt.Errorf("%w: customer name and phone are required", ErrInvalidRequest)
	}
	if toOffice && req.Shipping.ToOfficeID == "" {
		return "", false, "", fmt.Errorf("%w: office delivery needs an office id", ErrInvalidRequest)
	}
	if !toOffice && (req.Shipping.City == "" || req.Shipping.Address1 == "") {
		return "", false, "", fmt.Errorf("%w: address delivery needs city and address", ErrInvalidRequest)
	}

	return carrier, toOffice, method, nil
}
