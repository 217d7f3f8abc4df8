package orders

import (
	"time"

	"github.com/markov84/MarkLight-Ltd/internal/shipping"
)

// OrderItem is a frozen order line: the unit price is the effective price at
// placement time and is never recomputed, even if the product changes later.
type OrderItem struct {
	ProductID      string `json:"product"`
	ProductName    string `json:"productName,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

type Shipping struct {
	Carrier    shipping.Carrier `json:"carrier"`
	ToOffice   bool             `json:"toOffice"`
	ToOfficeID string           `json:"toOfficeId"`
	City       string           `json:"city"`
	Address1   string           `json:"address1"`
	PriceCents int64            `json:"priceCents"`
	Currency   string           `json:"currency"`
	Tracking   string           `json:"tracking"`
}

type Payment struct {
	Method           shipping.PaymentMethod `json:"method"`
	Status           PaymentStatus          `json:"status"`
	CODFeeCents      int64                  `json:"codFeeCents"`
	Currency         string                 `json:"currency"`
	Provider         string                 `json:"provider"`
	ProviderIntentID string                 `json:"providerIntentId"`
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user"`
	UserEmail       string      `json:"userEmail,omitempty"` // admin listings only
	Items           []OrderItem `json:"items"`
	SubtotalCents   int64       `json:"subtotalCents"`
	Shipping        Shipping    `json:"shipping"`
	Payment         Payment     `json:"payment"`
	GrandTotalCents int64       `json:"grandTotalCents"`
	Currency        string      `json:"currency"`
	Phone           string      `json:"phone"`
	CustomerName    string      `json:"customerName"`
	Email           string      `json:"email"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"createdAt"`
}
