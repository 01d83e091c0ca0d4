package usecase

import (
	"context"
	"crypto/rsa"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/cache"
	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
	apperrors "github.com/keygateio/keygate/internal/errors"
	"github.com/keygateio/keygate/internal/metrics"
	"github.com/keygateio/keygate/internal/ratelimit"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
	tokenService "github.com/keygateio/keygate/internal/token/service"
)

const clientCacheNamespace = "clientById"

// verificationBundle is the denormalized read model cached per client id:
// everything verification needs without touching the database again.
// For hsa256 APIs it carries the decrypted HMAC keys; for rsa256 APIs it
// carries every public key imported from the published JWKS document.
type verificationBundle struct {
	client     *tenantDomain.Client
	workspace  *tenantDomain.Workspace
	api        *tenantDomain.API
	currentKid string
	currentKey []byte
	nextKid    string
	nextKey    []byte
	rsaKeys    []*rsa.PublicKey
}

// verifyUseCase implements VerifyUseCase.
type verifyUseCase struct {
	clientRepo        ClientRepository
	workspaceRepo     WorkspaceRepository
	apiRepo           APIRepository
	signingSecretRepo SigningSecretRepository
	envelope          cryptoService.Envelope
	codec             tokenService.Codec
	jwksService       tokenService.JWKSService
	cache             cache.Cache
	limiter           ratelimit.Limiter
	tokenMetrics      metrics.TokenMetrics
	logger            *slog.Logger
	now               func() time.Time
}

// NewVerifyUseCase creates the token verification engine.
func NewVerifyUseCase(
	clientRepo ClientRepository,
	workspaceRepo WorkspaceRepository,
	apiRepo APIRepository,
	signingSecretRepo SigningSecretRepository,
	envelope cryptoService.Envelope,
	codec tokenService.Codec,
	jwksService tokenService.JWKSService,
	c cache.Cache,
	limiter ratelimit.Limiter,
	tokenMetrics metrics.TokenMetrics,
	logger *slog.Logger,
) VerifyUseCase {
	return &verifyUseCase{
		clientRepo:        clientRepo,
		workspaceRepo:     workspaceRepo,
		apiRepo:           apiRepo,
		signingSecretRepo: signingSecretRepo,
		envelope:          envelope,
		codec:             codec,
		jwksService:       jwksService,
		cache:             c,
		limiter:           limiter,
		tokenMetrics:      tokenMetrics,
		logger:            logger,
		now:               time.Now,
	}
}

// Verify runs the verification state machine. Each step short-circuits on
// failure; every terminal outcome is recorded as a metric before returning.
func (u *verifyUseCase) Verify(
	ctx context.Context,
	token string,
	requiredScopes []string,
	mode tenantDomain.ScopeMode,
) tokenDomain.VerifyResult {
	header, claims, err := u.codec.Decode(token)
	if err != nil {
		return u.record(ctx, nil, tokenDomain.Denied(tokenDomain.ReasonBadJWT))
	}

	bundle := u.resolveBundle(ctx, claims.Subject)
	if bundle == nil {
		return u.record(ctx, nil, tokenDomain.Denied(tokenDomain.ReasonInvalidClient))
	}

	// The token's own scope claim is the authorization grant, not the
	// client's live scope list.
	if len(requiredScopes) > 0 {
		granted := strings.Fields(claims.Scope)
		if !tenantDomain.MatchScopes(granted, requiredScopes, mode) {
			return u.record(ctx, bundle, tokenDomain.Denied(tokenDomain.ReasonMissingScopes))
		}
	}

	if outcome := u.verifySignature(token, header, bundle); !outcome.Valid {
		return u.record(ctx, bundle, tokenDomain.Denied(outcome.Reason))
	}

	now := u.now().UTC()
	if claims.SecretExpired(now) {
		return u.record(ctx, bundle, tokenDomain.Denied(tokenDomain.ReasonSecretExpired))
	}

	if claims.Version != bundle.client.Version {
		return u.record(ctx, bundle, tokenDomain.Denied(tokenDomain.ReasonVersionMismatch))
	}

	if limits := bundle.client.RateLimits(); limits.Enabled() {
		if !u.limiter.Take(bundle.client.ID.String(), limits, 1) {
			return u.record(ctx, bundle, tokenDomain.Denied(tokenDomain.ReasonRateLimitExceeded))
		}
	}

	return u.record(ctx, bundle, tokenDomain.Verified(bundle.client, claims))
}

// verifySignature picks the key(s) the bundle offers for the token and runs
// the codec. For hsa256 the token's kid must name the current or the next
// signing secret; any other kid fails without attempting verification. For
// rsa256 every published JWKS key is tried in order.
func (u *verifyUseCase) verifySignature(
	token string,
	header *tokenDomain.Header,
	bundle *verificationBundle,
) tokenService.Outcome {
	if bundle.api.Algorithm == tenantDomain.AlgorithmRS256 {
		outcome := tokenService.Outcome{Reason: tokenDomain.ReasonInvalidSignature}
		for _, key := range bundle.rsaKeys {
			outcome = u.codec.Verify(token, key, tokenDomain.AlgRS256)
			if outcome.Valid || outcome.Reason != tokenDomain.ReasonInvalidSignature {
				break
			}
		}
		return outcome
	}

	var key []byte
	switch header.KeyID {
	case bundle.currentKid:
		key = bundle.currentKey
	case bundle.nextKid:
		key = bundle.nextKey
	}
	if key == nil {
		// Unknown kid: no key to verify against.
		return tokenService.Outcome{Reason: tokenDomain.ReasonInvalidSignature}
	}
	return u.codec.Verify(token, key, tokenDomain.AlgHS256)
}

// resolveBundle reads the verification bundle through the cache. Populate
// failures of any kind resolve to nil, which callers fail closed as
// INVALID_CLIENT; negative results are cached so nonexistent subjects do not
// hammer the database.
func (u *verifyUseCase) resolveBundle(ctx context.Context, subject string) *verificationBundle {
	value, err := u.cache.FetchOrPopulate(ctx, clientCacheNamespace, subject, func(ctx context.Context) (any, error) {
		return u.populateBundle(ctx, subject), nil
	})
	if err != nil {
		return nil
	}
	bundle, _ := value.(*verificationBundle)
	return bundle
}

// populateBundle loads client → workspace → api → signing keys. Any missing
// link returns nil: a broken internal reference must look exactly like an
// unknown client, but it is logged loudly so operators can tell the
// difference.
func (u *verifyUseCase) populateBundle(ctx context.Context, subject string) *verificationBundle {
	clientID, err := uuid.Parse(subject)
	if err != nil {
		return nil
	}

	client, err := u.clientRepo.Get(ctx, clientID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			u.logger.Error("failed to load client for verification",
				slog.String("client_id", subject), slog.Any("error", err))
		}
		return nil
	}

	workspace, err := u.workspaceRepo.Get(ctx, client.WorkspaceID)
	if err != nil {
		u.logger.Error("verification chain broken: workspace lookup failed",
			slog.String("client_id", subject),
			slog.String("workspace_id", client.WorkspaceID.String()),
			slog.Any("error", err))
		return nil
	}

	api, err := u.apiRepo.Get(ctx, client.APIID)
	if err != nil {
		u.logger.Error("verification chain broken: api lookup failed",
			slog.String("client_id", subject),
			slog.String("api_id", client.APIID.String()),
			slog.Any("error", err))
		return nil
	}

	bundle := &verificationBundle{
		client:    client,
		workspace: workspace,
		api:       api,
	}

	if api.Algorithm == tenantDomain.AlgorithmRS256 {
		set, err := u.jwksService.Fetch(ctx, workspace.ID, api.ID)
		if err != nil {
			u.logger.Error("verification chain broken: jwks fetch failed",
				slog.String("api_id", api.ID.String()), slog.Any("error", err))
			return nil
		}
		for _, key := range set.Keys {
			publicKey, ok := key.Key.(*rsa.PublicKey)
			if !ok {
				continue
			}
			bundle.rsaKeys = append(bundle.rsaKeys, publicKey)
		}
		if len(bundle.rsaKeys) == 0 {
			u.logger.Error("verification chain broken: jwks holds no usable keys",
				slog.String("api_id", api.ID.String()))
			return nil
		}
		return bundle
	}

	bundle.currentKid = api.CurrentSigningSecretID.String()
	bundle.currentKey = u.loadHMACKey(ctx, workspace, api.CurrentSigningSecretID)
	if bundle.currentKey == nil {
		return nil
	}

	if api.NextSigningSecretID != nil {
		bundle.nextKid = api.NextSigningSecretID.String()
		bundle.nextKey = u.loadHMACKey(ctx, workspace, *api.NextSigningSecretID)
		if bundle.nextKey == nil {
			return nil
		}
	}

	return bundle
}

func (u *verifyUseCase) loadHMACKey(
	ctx context.Context,
	workspace *tenantDomain.Workspace,
	secretID uuid.UUID,
) []byte {
	secret, err := u.signingSecretRepo.Get(ctx, secretID)
	if err != nil {
		u.logger.Error("verification chain broken: signing secret lookup failed",
			slog.String("signing_secret_id", secretID.String()), slog.Any("error", err))
		return nil
	}

	key, err := u.envelope.DecryptWithDataKey(ctx, workspace.DataEncryptionKeyID, secret.Secret, secret.IV)
	if err != nil {
		u.logger.Error("verification chain broken: signing secret decrypt failed",
			slog.String("signing_secret_id", secretID.String()), slog.Any("error", err))
		return nil
	}
	return key
}

// record emits the token.verified metric for a terminal outcome and passes
// the result through. Emission is best-effort and never gates the response.
func (u *verifyUseCase) record(
	ctx context.Context,
	bundle *verificationBundle,
	result tokenDomain.VerifyResult,
) tokenDomain.VerifyResult {
	var workspaceID, apiID, clientID string
	if bundle != nil {
		workspaceID = bundle.workspace.ID.String()
		apiID = bundle.api.ID.String()
		clientID = bundle.client.ID.String()
	}
	u.tokenMetrics.RecordTokenVerified(ctx, workspaceID, apiID, clientID, string(result.Reason))
	return result
}
