package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedItem struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type OrderPlacedPayload struct {
	OrderID         string            `json:"order_id"`
	UserID          string            `json:"user_id"`
	CustomerName    string            `json:"customer_name"`
	Email           string            `json:"email"`
	Items           []OrderPlacedItem `json:"items"`
	GrandTotalCents int64             `json:"grand_total_cents"`
	Currency        string            `json:"currency"`
}
