package domain

import "time"

// IdempotencyKey records a processed expiry delivery so redelivered messages
// finalize a rotation at most once. Keys are the delivery id of the queue
// message and expire after roughly thirty days, well past any redelivery
// horizon.
type IdempotencyKey struct {
	Key         string
	ProcessedAt time.Time
	ExpiresAt   time.Time
}
