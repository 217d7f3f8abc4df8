package redisx

import "time"

const (
	// Checkout idempotency fence: idem:order:place:{user_id}:{key} -> 1
	KeyIdemOrderPlace = "idem:order:place:%s:%s"

	// Cached order summary: order_status:{order_id} -> {"status": "...", ...}
	KeyOrderStatus = "order_status:%s"

	// Password reset token: pwreset:{token} -> user_id
	KeyPasswordReset = "pwreset:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency   = 24 * time.Hour
	TTLStatusCache   = 5 * time.Minute
	TTLPasswordReset = 1 * time.Hour
	TTLDedup         = 48 * time.Hour
)
