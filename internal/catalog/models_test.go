package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	p := Product{PriceCents: 5000}
	assert.Equal(t, int64(5000), p.EffectivePriceCents())

	lower := int64(4000)
	p.DiscountedPriceCents = &lower
	assert.Equal(t, int64(4000), p.EffectivePriceCents())

	// a "discount" above the list price is ignored
	higher := int64(6000)
	p.DiscountedPriceCents = &higher
	assert.Equal(t, int64(5000), p.EffectivePriceCents())
}
