package usecase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	outboxDomain "github.com/keygateio/keygate/internal/outbox/domain"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenService "github.com/keygateio/keygate/internal/token/service"
)

// signingKeySize is the size of generated HMAC-SHA256 signing keys.
const signingKeySize = 32

// signingSecretExpiredPayload is the outbox payload scheduling finalization
// of a signing secret rotation.
type signingSecretExpiredPayload struct {
	APIID           uuid.UUID `json:"api_id"`
	SigningSecretID uuid.UUID `json:"signing_secret_id"`
}

// clientSecretExpiredPayload is the outbox payload scheduling finalization of
// a client secret rotation.
type clientSecretExpiredPayload struct {
	ClientID       uuid.UUID `json:"client_id"`
	ClientSecretID uuid.UUID `json:"client_secret_id"`
}

// rotationUseCase implements RotationUseCase.
type rotationUseCase struct {
	txManager        database.TxManager
	workspaceRepo    WorkspaceRepository
	apiRepo          APIRepository
	clientRepo       ClientRepository
	signingRepo      SigningSecretRepository
	clientSecretRepo ClientSecretRepository
	outboxRepo       OutboxEventRepository
	envelope         cryptoService.Envelope
	jwksService      tokenService.JWKSService
	secretService    tokenService.SecretService
	defaultOverlap   time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewRotationUseCase creates a RotationUseCase. defaultOverlap is the expiry
// window applied when the caller does not name one.
func NewRotationUseCase(
	txManager database.TxManager,
	workspaceRepo WorkspaceRepository,
	apiRepo APIRepository,
	clientRepo ClientRepository,
	signingRepo SigningSecretRepository,
	clientSecretRepo ClientSecretRepository,
	outboxRepo OutboxEventRepository,
	envelope cryptoService.Envelope,
	jwksService tokenService.JWKSService,
	secretService tokenService.SecretService,
	defaultOverlap time.Duration,
	logger *slog.Logger,
) RotationUseCase {
	return &rotationUseCase{
		txManager:        txManager,
		workspaceRepo:    workspaceRepo,
		apiRepo:          apiRepo,
		clientRepo:       clientRepo,
		signingRepo:      signingRepo,
		clientSecretRepo: clientSecretRepo,
		outboxRepo:       outboxRepo,
		envelope:         envelope,
		jwksService:      jwksService,
		secretService:    secretService,
		defaultOverlap:   defaultOverlap,
		logger:           logger,
		now:              time.Now,
	}
}

// RotateSigningSecret generates new signing material, opens the rotation
// window with a guarded pointer update, schedules the old secret's expiry and
// enqueues finalization, all in one transaction. For rsa256 APIs the new
// public key is appended to the published JWKS after commit, so tokens under
// either key verify during the overlap.
func (u *rotationUseCase) RotateSigningSecret(
	ctx context.Context,
	apiID uuid.UUID,
	rotatedBy *tenantDomain.Client,
	expiresIn time.Duration,
) (*tenantDomain.SigningSecret, error) {
	api, err := u.apiRepo.Get(ctx, apiID)
	if err != nil {
		return nil, err
	}
	if rotatedBy == nil || !rotatedBy.IsRootFor(api.WorkspaceID) {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "caller is not a root client for the workspace")
	}
	if expiresIn <= 0 {
		expiresIn = u.defaultOverlap
	}

	workspace, err := u.workspaceRepo.Get(ctx, api.WorkspaceID)
	if err != nil {
		return nil, err
	}

	keyMaterial, publicKey, err := generateKeyMaterial(api.Algorithm)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	expiry := now.Add(expiresIn)
	oldSecretID := api.CurrentSigningSecretID

	var newSecret *tenantDomain.SigningSecret
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		ciphertext, iv, err := u.envelope.EncryptWithDataKey(txCtx, workspace.DataEncryptionKeyID, keyMaterial)
		if err != nil {
			return err
		}

		newSecret = &tenantDomain.SigningSecret{
			ID:          uuid.Must(uuid.NewV7()),
			WorkspaceID: workspace.ID,
			Algorithm:   api.Algorithm,
			Secret:      ciphertext,
			IV:          iv,
			Status:      tenantDomain.SecretStatusActive,
			CreatedAt:   now,
		}
		if err := u.signingRepo.Create(txCtx, newSecret); err != nil {
			return err
		}

		if err := u.apiRepo.OpenRotation(txCtx, api.ID, oldSecretID, newSecret.ID); err != nil {
			return err
		}

		if err := u.signingRepo.SetExpiry(txCtx, oldSecretID, expiry); err != nil {
			return err
		}

		return u.enqueueExpiry(txCtx, outboxDomain.EventTypeSigningSecretExpired, signingSecretExpiredPayload{
			APIID:           api.ID,
			SigningSecretID: oldSecretID,
		}, expiry, now)
	})
	if err != nil {
		return nil, err
	}

	if publicKey != nil {
		if err := u.jwksService.AppendKey(ctx, workspace.ID, api.ID, publicKey, newSecret.ID.String()); err != nil {
			// The window is open but the new key is not published yet;
			// tokens signed with it will not verify until it is.
			u.logger.Error("failed to publish rotated jwks key",
				slog.String("api_id", api.ID.String()),
				slog.String("signing_secret_id", newSecret.ID.String()),
				slog.Any("error", err),
			)
			return nil, err
		}
	}

	return newSecret, nil
}

// RotateClientSecret generates a fresh client secret and opens the rotation
// window. The guarded pointer update bumps the client's version in the same
// statement, so every outstanding token fails verification immediately while
// the old secret keeps authenticating until finalization.
func (u *rotationUseCase) RotateClientSecret(
	ctx context.Context,
	clientID uuid.UUID,
	expiresIn time.Duration,
) (*RotateClientSecretOutput, error) {
	client, err := u.clientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if expiresIn <= 0 {
		expiresIn = u.defaultOverlap
	}

	plaintext, hash, err := u.secretService.Generate()
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	expiry := now.Add(expiresIn)
	oldSecretID := client.CurrentClientSecretID

	newSecret := &tenantDomain.ClientSecret{
		ID:         uuid.Must(uuid.NewV7()),
		ClientID:   client.ID,
		SecretHash: hash,
		Status:     tenantDomain.SecretStatusActive,
		CreatedAt:  now,
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.clientSecretRepo.Create(txCtx, newSecret); err != nil {
			return err
		}

		if err := u.clientRepo.OpenSecretRotation(txCtx, client.ID, oldSecretID, newSecret.ID); err != nil {
			return err
		}

		if err := u.clientSecretRepo.SetExpiry(txCtx, oldSecretID, expiry); err != nil {
			return err
		}

		return u.enqueueExpiry(txCtx, outboxDomain.EventTypeClientSecretExpired, clientSecretExpiredPayload{
			ClientID:       client.ID,
			ClientSecretID: oldSecretID,
		}, expiry, now)
	})
	if err != nil {
		return nil, err
	}

	return &RotateClientSecretOutput{
		SecretID:        newSecret.ID,
		PlaintextSecret: plaintext,
	}, nil
}

// enqueueExpiry writes the outbox event inside the rotation transaction, with
// delivery deferred to the expiry instant.
func (u *rotationUseCase) enqueueExpiry(ctx context.Context, eventType string, payload any, deliverAt, now time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox payload")
	}

	return u.outboxRepo.Create(ctx, &outboxDomain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(body),
		Status:    outboxDomain.OutboxEventStatusPending,
		DeliverAt: deliverAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// generateKeyMaterial returns fresh plaintext signing material for the
// algorithm: raw random bytes for hsa256, a PKCS #8 PEM-encoded RSA-2048
// private key (plus its public half) for rsa256.
func generateKeyMaterial(algorithm tenantDomain.SigningAlgorithm) ([]byte, *rsa.PublicKey, error) {
	if algorithm == tenantDomain.AlgorithmRS256 {
		privateKey, err := tokenService.GenerateRSAKey()
		if err != nil {
			return nil, nil, err
		}
		pemBytes, err := tokenService.MarshalRSAPrivateKeyPEM(privateKey)
		if err != nil {
			return nil, nil, err
		}
		return pemBytes, &privateKey.PublicKey, nil
	}

	key := make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to generate hmac key")
	}
	return key, nil, nil
}
