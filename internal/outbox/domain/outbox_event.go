// Package domain defines the transactional outbox entities.
//
// Rotation writes enqueue an expiry event in the same transaction that moves
// the secret pointers, and a poller delivers due events later. DeliverAt
// carries the scheduled expiry instant, so an event written at rotation time
// is not picked up until the overlap window has elapsed.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Event types emitted by rotations.
const (
	// EventTypeSigningSecretExpired schedules finalization of a signing
	// secret rotation. Payload: {"api_id": ..., "signing_secret_id": ...}.
	EventTypeSigningSecretExpired = "signing_secret.expired"

	// EventTypeClientSecretExpired schedules finalization of a client secret
	// rotation. Payload: {"client_id": ..., "client_secret_id": ...}.
	EventTypeClientSecretExpired = "client_secret.expired"
)

// OutboxEvent represents an event in the transactional outbox pattern.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	DeliverAt   time.Time
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
