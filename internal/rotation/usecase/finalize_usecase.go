package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	outboxDomain "github.com/keygateio/keygate/internal/outbox/domain"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// finalizeUseCase implements FinalizeUseCase.
type finalizeUseCase struct {
	txManager        database.TxManager
	apiRepo          APIRepository
	clientRepo       ClientRepository
	signingRepo      SigningSecretRepository
	clientSecretRepo ClientSecretRepository
	idempotencyRepo  IdempotencyKeyRepository
	keyTTL           time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewFinalizeUseCase creates a FinalizeUseCase. keyTTL is how long processed
// delivery ids are remembered; it must exceed the queue's redelivery horizon.
func NewFinalizeUseCase(
	txManager database.TxManager,
	apiRepo APIRepository,
	clientRepo ClientRepository,
	signingRepo SigningSecretRepository,
	clientSecretRepo ClientSecretRepository,
	idempotencyRepo IdempotencyKeyRepository,
	keyTTL time.Duration,
	logger *slog.Logger,
) FinalizeUseCase {
	return &finalizeUseCase{
		txManager:        txManager,
		apiRepo:          apiRepo,
		clientRepo:       clientRepo,
		signingRepo:      signingRepo,
		clientSecretRepo: clientSecretRepo,
		idempotencyRepo:  idempotencyRepo,
		keyTTL:           keyTTL,
		logger:           logger,
		now:              time.Now,
	}
}

// HandleExpiry finalizes the rotation an expiry event refers to. Safe under
// redelivery: a recorded delivery id is a no-op, and a pointer that already
// moved on (another delivery finalized first, or a newer rotation replaced
// the window) is treated as already-finalized success.
func (u *finalizeUseCase) HandleExpiry(ctx context.Context, deliveryID, eventType string, payload []byte) error {
	now := u.now().UTC()

	processed, err := u.idempotencyRepo.Exists(ctx, deliveryID, now)
	if err != nil {
		return err
	}
	if processed {
		u.logger.Info("expiry delivery already processed",
			slog.String("delivery_id", deliveryID),
			slog.String("event_type", eventType),
		)
		return nil
	}

	switch eventType {
	case outboxDomain.EventTypeSigningSecretExpired:
		return u.finalizeSigningSecret(ctx, deliveryID, payload, now)
	case outboxDomain.EventTypeClientSecretExpired:
		return u.finalizeClientSecret(ctx, deliveryID, payload, now)
	default:
		return fmt.Errorf("unknown expiry event type %q", eventType)
	}
}

func (u *finalizeUseCase) finalizeSigningSecret(ctx context.Context, deliveryID string, payload []byte, now time.Time) error {
	var event signingSecretExpiredPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal signing secret expiry payload")
	}

	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		api, err := u.apiRepo.Get(txCtx, event.APIID)
		if err != nil {
			return err
		}

		if api.CurrentSigningSecretID != event.SigningSecretID || api.NextSigningSecretID == nil {
			u.logger.Info("signing secret rotation already finalized",
				slog.String("api_id", event.APIID.String()),
				slog.String("signing_secret_id", event.SigningSecretID.String()),
			)
			return u.markProcessed(txCtx, deliveryID, now)
		}

		if err := u.apiRepo.FinalizeRotation(txCtx, api.ID, event.SigningSecretID, *api.NextSigningSecretID); err != nil {
			if apperrors.Is(err, apperrors.ErrConflict) {
				return u.markProcessed(txCtx, deliveryID, now)
			}
			return err
		}

		if err := u.signingRepo.Revoke(txCtx, event.SigningSecretID, now); err != nil {
			return err
		}

		return u.markProcessed(txCtx, deliveryID, now)
	})
}

func (u *finalizeUseCase) finalizeClientSecret(ctx context.Context, deliveryID string, payload []byte, now time.Time) error {
	var event clientSecretExpiredPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal client secret expiry payload")
	}

	return u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		client, err := u.clientRepo.Get(txCtx, event.ClientID)
		if err != nil {
			return err
		}

		if client.CurrentClientSecretID != event.ClientSecretID || client.NextClientSecretID == nil {
			u.logger.Info("client secret rotation already finalized",
				slog.String("client_id", event.ClientID.String()),
				slog.String("client_secret_id", event.ClientSecretID.String()),
			)
			return u.markProcessed(txCtx, deliveryID, now)
		}

		if err := u.clientRepo.FinalizeSecretRotation(txCtx, client.ID, event.ClientSecretID, *client.NextClientSecretID); err != nil {
			if apperrors.Is(err, apperrors.ErrConflict) {
				return u.markProcessed(txCtx, deliveryID, now)
			}
			return err
		}

		if err := u.clientSecretRepo.Revoke(txCtx, event.ClientSecretID, now); err != nil {
			return err
		}

		return u.markProcessed(txCtx, deliveryID, now)
	})
}

// markProcessed records the delivery id so later redeliveries short-circuit.
func (u *finalizeUseCase) markProcessed(ctx context.Context, deliveryID string, now time.Time) error {
	return u.idempotencyRepo.Create(ctx, &tenantDomain.IdempotencyKey{
		Key:         deliveryID,
		ProcessedAt: now,
		ExpiresAt:   now.Add(u.keyTTL),
	})
}
