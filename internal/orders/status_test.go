package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, CanTransition(PaymentPending, PaymentPaid))
	assert.True(t, CanTransition(PaymentPending, PaymentAuthorized))
	assert.True(t, CanTransition(PaymentAuthorized, PaymentPaid))
	assert.True(t, CanTransition(PaymentPaid, PaymentRefunded))
	assert.True(t, CanTransition(PaymentFailed, PaymentPending))

	assert.False(t, CanTransition(PaymentRefunded, PaymentPending))
	assert.False(t, CanTransition(PaymentPaid, PaymentPending))
	assert.False(t, CanTransition(PaymentAuthorized, PaymentRefunded))
}
