package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDeterministic(t *testing.T) {
	rates := DefaultRates()

	a := Calculate(rates, CarrierEcont, false, 10000, MethodCOD)
	b := Calculate(rates, CarrierEcont, false, 10000, MethodCOD)
	assert.Equal(t, a, b)
}

func TestCalculateGrandTotalIdentity(t *testing.T) {
	rates := DefaultRates()

	cases := []struct {
		name     string
		carrier  Carrier
		toOffice bool
		subtotal int64
		method   PaymentMethod
	}{
		{"econt office card", CarrierEcont, true, 4200, MethodCard},
		{"econt address cod", CarrierEcont, false, 9999, MethodCOD},
		{"speedy office cod", CarrierSpeedy, true, 1, MethodCOD},
		{"speedy address bank", CarrierSpeedy, false, 50000, MethodBank},
		{"unknown carrier falls back", Carrier("dhl"), false, 300, MethodCard},
		{"zero subtotal", CarrierOther, true, 0, MethodCOD},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Calculate(rates, tc.carrier, tc.toOffice, tc.subtotal, tc.method)
			assert.Equal(t, tc.subtotal+q.ShippingCents+q.CODFeeCents, q.GrandTotalCents)
		})
	}
}

func TestCODFeeOnlyForCOD(t *testing.T) {
	rates := DefaultRates()

	assert.Zero(t, Calculate(rates, CarrierEcont, true, 5000, MethodCard).CODFeeCents)
	assert.Zero(t, Calculate(rates, CarrierEcont, true, 5000, MethodBank).CODFeeCents)
	assert.NotZero(t, Calculate(rates, CarrierEcont, true, 5000, MethodCOD).CODFeeCents)
}

func TestFreeShippingThreshold(t *testing.T) {
	rates := DefaultRates()

	q := Calculate(rates, CarrierSpeedy, false, rates.FreeShipOverCents, MethodCard)
	assert.Zero(t, q.ShippingCents)

	q = Calculate(rates, CarrierSpeedy, false, rates.FreeShipOverCents-1, MethodCard)
	assert.Equal(t, rates.Carriers[CarrierSpeedy].ToAddressCents, q.ShippingCents)
}

func TestOfficeCheaperThanAddress(t *testing.T) {
	rates := DefaultRates()

	office := Calculate(rates, CarrierEcont, true, 100, MethodCard)
	address := Calculate(rates, CarrierEcont, false, 100, MethodCard)
	assert.Less(t, office.ShippingCents, address.ShippingCents)
}
