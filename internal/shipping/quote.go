package shipping

// Carrier identifies the courier a shipment is handed to.
type Carrier string

const (
	CarrierEcont  Carrier = "econt"
	CarrierSpeedy Carrier = "speedy"
	CarrierOther  Carrier = "other"
)

// PaymentMethod mirrors the payment.method values accepted at checkout.
type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodCOD  PaymentMethod = "cod"
	MethodBank PaymentMethod = "bank"
)

// Quote is the priced result of a shipping calculation. All amounts are in
// cents; GrandTotal is always Subtotal + Shipping + CODFee exactly.
type Quote struct {
	ShippingCents   int64 `json:"shipping_cents"`
	CODFeeCents     int64 `json:"cod_fee_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`
}

type CarrierRates struct {
	ToOfficeCents  int64
	ToAddressCents int64
}

// RateTable is the swappable pricing policy. The calculator only depends on
// its shape, never on the concrete numbers.
type RateTable struct {
	Carriers map[Carrier]CarrierRates

	// Orders at or above this subtotal ship free. Zero disables it.
	FreeShipOverCents int64

	// Cash-on-delivery surcharge: flat part plus basis points of subtotal.
	CODFlatCents int64
	CODFeeBps    int64
}

// DefaultRates is the rate card used by the production deployment.
func DefaultRates() RateTable {
	return RateTable{
		Carriers: map[Carrier]CarrierRates{
			CarrierEcont:  {ToOfficeCents: 590, ToAddressCents: 790},
			CarrierSpeedy: {ToOfficeCents: 620, ToAddressCents: 850},
			CarrierOther:  {ToOfficeCents: 990, ToAddressCents: 990},
		},
		FreeShipOverCents: 15000,
		CODFlatCents:      120,
		CODFeeBps:         100, // 1% of subtotal
	}
}

// Calculate prices a shipment. It is a pure function of its inputs: no
// clock, no I/O, no randomness, so an audit can recompute any stored quote.
func Calculate(t RateTable, carrier Carrier, toOffice bool, subtotalCents int64, method PaymentMethod) Quote {
	rates, ok := t.Carriers[carrier]
	if !ok {
		rates = t.Carriers[CarrierOther]
	}

	shipping := rates.ToAddressCents
	if toOffice {
		shipping = rates.ToOfficeCents
	}
	if t.FreeShipOverCents > 0 && subtotalCents >= t.FreeShipOverCents {
		shipping = 0
	}

	var codFee int64
	if method == MethodCOD {
		codFee = t.CODFlatCents + subtotalCents*t.CODFeeBps/10000
	}

	return Quote{
		ShippingCents:   shipping,
		CODFeeCents:     codFee,
		GrandTotalCents: subtotalCents + shipping + codFee,
	}
}
