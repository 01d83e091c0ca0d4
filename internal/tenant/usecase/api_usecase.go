package usecase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenService "github.com/keygateio/keygate/internal/token/service"
)

// hmacKeySize is the size of generated HMAC-SHA256 signing keys.
const hmacKeySize = 32

// defaultTokenExpirationSeconds applies when an API is created without an
// explicit token lifetime.
const defaultTokenExpirationSeconds = 3600

// apiUseCase implements APIUseCase.
type apiUseCase struct {
	txManager         database.TxManager
	workspaceRepo     WorkspaceRepository
	apiRepo           APIRepository
	signingSecretRepo SigningSecretRepository
	envelope          cryptoService.Envelope
	jwksService       tokenService.JWKSService
	logger            *slog.Logger
}

// NewAPIUseCase creates an APIUseCase.
func NewAPIUseCase(
	txManager database.TxManager,
	workspaceRepo WorkspaceRepository,
	apiRepo APIRepository,
	signingSecretRepo SigningSecretRepository,
	envelope cryptoService.Envelope,
	jwksService tokenService.JWKSService,
	logger *slog.Logger,
) APIUseCase {
	return &apiUseCase{
		txManager:         txManager,
		workspaceRepo:     workspaceRepo,
		apiRepo:           apiRepo,
		signingSecretRepo: signingSecretRepo,
		envelope:          envelope,
		jwksService:       jwksService,
		logger:            logger,
	}
}

// Create provisions an API together with its initial signing secret. The
// secret material is generated per algorithm (32 random bytes for hsa256, an
// RSA-2048 private key for rsa256), envelope-encrypted with the workspace
// data key, and persisted in the same transaction as the API row. For rsa256
// the public key is published to the JWKS document after commit.
func (u *apiUseCase) Create(ctx context.Context, input CreateAPIInput) (*tenantDomain.API, error) {
	if input.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "api name is required")
	}
	if input.Algorithm != tenantDomain.AlgorithmHS256 && input.Algorithm != tenantDomain.AlgorithmRS256 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported signing algorithm")
	}
	expiration := input.TokenExpirationSeconds
	if expiration <= 0 {
		expiration = defaultTokenExpirationSeconds
	}

	workspace, err := u.workspaceRepo.Get(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}

	keyMaterial, publicKey, err := generateSigningKeyMaterial(input.Algorithm)
	if err != nil {
		return nil, err
	}

	var api *tenantDomain.API
	var signingSecretID uuid.UUID
	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		ciphertext, iv, err := u.envelope.EncryptWithDataKey(txCtx, workspace.DataEncryptionKeyID, keyMaterial)
		if err != nil {
			return err
		}

		signingSecret := &tenantDomain.SigningSecret{
			ID:          uuid.Must(uuid.NewV7()),
			WorkspaceID: workspace.ID,
			Algorithm:   input.Algorithm,
			Secret:      ciphertext,
			IV:          iv,
			Status:      tenantDomain.SecretStatusActive,
			CreatedAt:   time.Now().UTC(),
		}
		if err := u.signingSecretRepo.Create(txCtx, signingSecret); err != nil {
			return err
		}
		signingSecretID = signingSecret.ID

		api = &tenantDomain.API{
			ID:                     uuid.Must(uuid.NewV7()),
			WorkspaceID:            workspace.ID,
			Name:                   input.Name,
			Algorithm:              input.Algorithm,
			TokenExpirationSeconds: expiration,
			CurrentSigningSecretID: signingSecret.ID,
			Scopes:                 input.Scopes,
			CreatedAt:              time.Now().UTC(),
		}
		return u.apiRepo.Create(txCtx, api)
	})
	if err != nil {
		return nil, err
	}

	if publicKey != nil {
		if err := u.jwksService.AppendKey(ctx, workspace.ID, api.ID, publicKey, signingSecretID.String()); err != nil {
			// The API exists but cannot verify tokens until its JWKS is
			// published; surface the failure instead of half-succeeding.
			u.logger.Error("failed to publish initial jwks document",
				slog.String("api_id", api.ID.String()),
				slog.Any("error", err),
			)
			return nil, err
		}
	}

	return api, nil
}

func (u *apiUseCase) Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error) {
	return u.apiRepo.Get(ctx, apiID)
}

func (u *apiUseCase) ListByWorkspace(
	ctx context.Context,
	workspaceID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.API, error) {
	return u.apiRepo.ListByWorkspace(ctx, workspaceID, limit, offset)
}

// generateSigningKeyMaterial returns the plaintext signing key for the
// algorithm: raw random bytes for hsa256, a PKCS #8 PEM-encoded RSA-2048
// private key (plus its public half) for rsa256.
func generateSigningKeyMaterial(algorithm tenantDomain.SigningAlgorithm) ([]byte, *rsa.PublicKey, error) {
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

	key := make([]byte, hmacKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to generate hmac key")
	}
	return key, nil, nil
}
