package usecase

import (
	"context"
	"fmt"
	"log/slog"

	outboxDomain "github.com/keygateio/keygate/internal/outbox/domain"
)

// expiryProcessor adapts FinalizeUseCase to the outbox poller's
// EventProcessor contract. The outbox event id is the delivery id.
type expiryProcessor struct {
	finalize FinalizeUseCase
}

// NewExpiryProcessor creates the outbox event processor that finalizes
// rotations.
func NewExpiryProcessor(finalize FinalizeUseCase) *expiryProcessor {
	return &expiryProcessor{finalize: finalize}
}

func (p *expiryProcessor) Process(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	return p.finalize.HandleExpiry(ctx, event.ID.String(), event.EventType, []byte(event.Payload))
}

// BatchMessage is one expiry delivery from an external queue.
type BatchMessage struct {
	DeliveryID string
	EventType  string
	Payload    []byte
}

// BatchConsumer consumes batches of expiry deliveries.
type BatchConsumer interface {
	// ProcessBatch handles each message independently and returns the
	// delivery ids that failed, so the queue redelivers only those. A panic
	// in one message is contained and counted as that message's failure.
	ProcessBatch(ctx context.Context, messages []BatchMessage) []string
}

// batchConsumer implements BatchConsumer over FinalizeUseCase.
type batchConsumer struct {
	finalize FinalizeUseCase
	logger   *slog.Logger
}

// NewBatchConsumer creates a BatchConsumer.
func NewBatchConsumer(finalize FinalizeUseCase, logger *slog.Logger) BatchConsumer {
	return &batchConsumer{finalize: finalize, logger: logger}
}

func (c *batchConsumer) ProcessBatch(ctx context.Context, messages []BatchMessage) []string {
	var failed []string
	for _, message := range messages {
		if err := c.processOne(ctx, message); err != nil {
			c.logger.Error("expiry delivery failed",
				slog.String("delivery_id", message.DeliveryID),
				slog.String("event_type", message.EventType),
				slog.Any("error", err),
			)
			failed = append(failed, message.DeliveryID)
		}
	}
	return failed
}

// processOne contains a single message's panic so a poison message never
// takes down the batch.
func (c *batchConsumer) processOne(ctx context.Context, message BatchMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing delivery: %v", r)
		}
	}()
	return c.finalize.HandleExpiry(ctx, message.DeliveryID, message.EventType, message.Payload)
}
