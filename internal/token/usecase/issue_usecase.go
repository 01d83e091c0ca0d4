package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
	apperrors "github.com/keygateio/keygate/internal/errors"
	"github.com/keygateio/keygate/internal/metrics"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
	tokenService "github.com/keygateio/keygate/internal/token/service"
)

// issueUseCase implements IssueUseCase.
type issueUseCase struct {
	clientRepo        ClientRepository
	clientSecretRepo  ClientSecretRepository
	workspaceRepo     WorkspaceRepository
	apiRepo           APIRepository
	signingSecretRepo SigningSecretRepository
	envelope          cryptoService.Envelope
	codec             tokenService.Codec
	secretService     tokenService.SecretService
	quotaPolicy       QuotaPolicy
	tokenMetrics      metrics.TokenMetrics
	logger            *slog.Logger
	now               func() time.Time
}

// NewIssueUseCase creates the token issuance engine.
func NewIssueUseCase(
	clientRepo ClientRepository,
	clientSecretRepo ClientSecretRepository,
	workspaceRepo WorkspaceRepository,
	apiRepo APIRepository,
	signingSecretRepo SigningSecretRepository,
	envelope cryptoService.Envelope,
	codec tokenService.Codec,
	secretService tokenService.SecretService,
	quotaPolicy QuotaPolicy,
	tokenMetrics metrics.TokenMetrics,
	logger *slog.Logger,
) IssueUseCase {
	return &issueUseCase{
		clientRepo:        clientRepo,
		clientSecretRepo:  clientSecretRepo,
		workspaceRepo:     workspaceRepo,
		apiRepo:           apiRepo,
		signingSecretRepo: signingSecretRepo,
		envelope:          envelope,
		codec:             codec,
		secretService:     secretService,
		quotaPolicy:       quotaPolicy,
		tokenMetrics:      tokenMetrics,
		logger:            logger,
		now:               time.Now,
	}
}

// Issue authenticates the client and returns a signed token.
//
// Authentication failures (unknown client, no matching secret, exhausted
// quota) all surface as ErrForbidden so callers cannot probe which clients
// exist. Broken internal references (client points at a missing workspace,
// api, or signing secret) are logged loudly and surface as ErrInternal.
func (u *issueUseCase) Issue(ctx context.Context, clientID uuid.UUID, clientSecret string) (*IssueOutput, error) {
	now := u.now().UTC()

	client, err := u.clientRepo.Get(ctx, clientID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}

	matched, err := u.authenticate(ctx, client, clientSecret, now)
	if err != nil {
		return nil, err
	}

	workspace, err := u.workspaceRepo.Get(ctx, client.WorkspaceID)
	if err != nil {
		u.logger.Error("client references missing workspace",
			slog.String("client_id", client.ID.String()),
			slog.String("workspace_id", client.WorkspaceID.String()),
			slog.Any("error", err),
		)
		return nil, apperrors.ErrInternal
	}

	api, err := u.apiRepo.Get(ctx, client.APIID)
	if err != nil {
		u.logger.Error("client references missing api",
			slog.String("client_id", client.ID.String()),
			slog.String("api_id", client.APIID.String()),
			slog.Any("error", err),
		)
		return nil, apperrors.ErrInternal
	}

	allowed, err := u.quotaPolicy.Allow(ctx, workspace, now)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "monthly token quota exceeded")
	}

	signingSecretID := api.SigningSecretIDForIssuance()
	signingKey, err := u.loadSigningKey(ctx, workspace, api, signingSecretID)
	if err != nil {
		return nil, err
	}

	claims := &tokenDomain.Claims{
		Subject:   client.ID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Duration(api.TokenExpirationSeconds) * time.Second).Unix(),
		Version:   client.Version,
		Scope:     strings.Join(client.Scopes, " "),
		Metadata:  client.Metadata,
	}
	if matched.ExpiresAt != nil {
		expiresAt := matched.ExpiresAt.Unix()
		claims.SecretExpiresAt = &expiresAt
	}

	header := tokenDomain.Header{
		Type:      tokenDomain.TokenType,
		KeyID:     signingSecretID.String(),
		Algorithm: wireAlgorithm(api.Algorithm),
	}

	token, err := u.codec.Sign(header, claims, signingKey)
	if err != nil {
		u.logger.Error("failed to sign token",
			slog.String("api_id", api.ID.String()),
			slog.String("signing_secret_id", signingSecretID.String()),
			slog.Any("error", err),
		)
		return nil, apperrors.ErrInternal
	}

	if err := u.quotaPolicy.RecordIssued(ctx, workspace, now); err != nil {
		u.logger.Error("failed to record token usage",
			slog.String("workspace_id", workspace.ID.String()),
			slog.Any("error", err),
		)
	}
	u.tokenMetrics.RecordTokenGenerated(ctx, workspace.ID.String(), api.ID.String(), client.ID.String())

	return &IssueOutput{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: api.TokenExpirationSeconds,
		Scope:     claims.Scope,
	}, nil
}

// authenticate compares the provided secret against the client's current and
// next secret candidates, in that order. Expired candidates do not
// authenticate even when the hash matches.
func (u *issueUseCase) authenticate(
	ctx context.Context,
	client *tenantDomain.Client,
	clientSecret string,
	now time.Time,
) (*tenantDomain.ClientSecret, error) {
	providedHash := u.secretService.Hash(clientSecret)

	candidates := []uuid.UUID{client.CurrentClientSecretID}
	if client.NextClientSecretID != nil {
		candidates = append(candidates, *client.NextClientSecretID)
	}

	for _, secretID := range candidates {
		secret, err := u.clientSecretRepo.Get(ctx, secretID)
		if err != nil {
			u.logger.Error("client references missing client secret",
				slog.String("client_id", client.ID.String()),
				slog.String("client_secret_id", secretID.String()),
				slog.Any("error", err),
			)
			continue
		}
		if secret.Authenticates(providedHash, now) {
			return secret, nil
		}
	}

	return nil, apperrors.ErrForbidden
}

// loadSigningKey envelope-decrypts the signing secret and imports it in the
// form the codec expects: raw bytes for hsa256, an RSA private key for rsa256.
func (u *issueUseCase) loadSigningKey(
	ctx context.Context,
	workspace *tenantDomain.Workspace,
	api *tenantDomain.API,
	signingSecretID uuid.UUID,
) (any, error) {
	signingSecret, err := u.signingSecretRepo.Get(ctx, signingSecretID)
	if err != nil {
		u.logger.Error("api references missing signing secret",
			slog.String("api_id", api.ID.String()),
			slog.String("signing_secret_id", signingSecretID.String()),
			slog.Any("error", err),
		)
		return nil, apperrors.ErrInternal
	}

	plaintext, err := u.envelope.DecryptWithDataKey(
		ctx,
		workspace.DataEncryptionKeyID,
		signingSecret.Secret,
		signingSecret.IV,
	)
	if err != nil {
		u.logger.Error("failed to decrypt signing secret",
			slog.String("api_id", api.ID.String()),
			slog.String("signing_secret_id", signingSecretID.String()),
			slog.Any("error", err),
		)
		return nil, apperrors.ErrInternal
	}

	if api.Algorithm == tenantDomain.AlgorithmRS256 {
		privateKey, err := tokenService.ParseRSAPrivateKeyPEM(plaintext)
		if err != nil {
			u.logger.Error("signing secret holds invalid rsa key material",
				slog.String("signing_secret_id", signingSecretID.String()),
			)
			return nil, apperrors.ErrInternal
		}
		return privateKey, nil
	}
	return plaintext, nil
}

// wireAlgorithm maps the API algorithm to the JWT header alg value.
func wireAlgorithm(alg tenantDomain.SigningAlgorithm) string {
	if alg == tenantDomain.AlgorithmRS256 {
		return tokenDomain.AlgRS256
	}
	return tokenDomain.AlgHS256
}
