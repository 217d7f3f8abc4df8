package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/markov84/MarkLight-Ltd/internal/orders"
)

func TestDedupKeyPerService(t *testing.T) {
	s := &Service{ServiceName: "notifier-eu"}
	assert.Equal(t, "dedup:notifier-eu:ev-1", s.dedupKey("ev-1"))

	// unset name falls back to the default consumer name
	s = &Service{}
	assert.Equal(t, "dedup:notifier:ev-1", s.dedupKey("ev-1"))
}

func TestConfirmationBody(t *testing.T) {
	body := confirmationBody(orders.OrderPlacedPayload{
		OrderID:         "ord-1",
		CustomerName:    "Ivan Petrov",
		GrandTotalCents: 12305,
		Currency:        "BGN",
	})
	assert.Contains(t, body, "Ivan Petrov")
	assert.Contains(t, body, "ord-1")
	assert.Contains(t, body, "123.05 BGN")

	body = confirmationBody(orders.OrderPlacedPayload{GrandTotalCents: 100, Currency: "BGN"})
	assert.Contains(t, body, "Dear customer")
}
