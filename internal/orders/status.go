package orders

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:    {PaymentAuthorized: true, PaymentPaid: true, PaymentFailed: true},
	PaymentAuthorized: {PaymentPaid: true, PaymentFailed: true},
	PaymentFailed:     {PaymentPending: true},
	PaymentPaid:       {PaymentRefunded: true},
	PaymentRefunded:   {},
}

// CanTransition guards the payment-status updates made by fulfillment
// collaborators; everything else on a placed order is immutable.
func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}
