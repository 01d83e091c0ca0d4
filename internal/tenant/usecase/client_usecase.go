package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenService "github.com/keygateio/keygate/internal/token/service"
)

// clientUseCase implements ClientUseCase.
type clientUseCase struct {
	txManager        database.TxManager
	apiRepo          APIRepository
	clientRepo       ClientRepository
	clientSecretRepo ClientSecretRepository
	secretService    tokenService.SecretService
}

// NewClientUseCase creates a ClientUseCase.
func NewClientUseCase(
	txManager database.TxManager,
	apiRepo APIRepository,
	clientRepo ClientRepository,
	clientSecretRepo ClientSecretRepository,
	secretService tokenService.SecretService,
) ClientUseCase {
	return &clientUseCase{
		txManager:        txManager,
		apiRepo:          apiRepo,
		clientRepo:       clientRepo,
		clientSecretRepo: clientSecretRepo,
		secretService:    secretService,
	}
}

// Create provisions a client together with its initial secret. The client row
// and the secret row reference each other, so both are written in one
// transaction with the constraint check deferred to commit. Returns the
// generated plaintext exactly once; only the SHA-256 hash is stored.
func (u *clientUseCase) Create(ctx context.Context, input CreateClientInput) (*CreateClientOutput, error) {
	if input.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client name is required")
	}

	api, err := u.apiRepo.Get(ctx, input.APIID)
	if err != nil {
		return nil, err
	}

	// Clients may only be granted scopes their API declares.
	if !tenantDomain.MatchScopes(api.Scopes, input.Scopes, tenantDomain.ScopeModeAll) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "scopes not declared by the api")
	}

	plaintext, hash, err := u.secretService.Generate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client := &tenantDomain.Client{
		ID:                    uuid.Must(uuid.NewV7()),
		APIID:                 api.ID,
		WorkspaceID:           api.WorkspaceID,
		ForWorkspaceID:        input.ForWorkspaceID,
		Name:                  input.Name,
		Version:               1,
		CurrentClientSecretID: uuid.Must(uuid.NewV7()),
		BucketSize:            input.BucketSize,
		RefillAmount:          input.RefillAmount,
		RefillIntervalMS:      input.RefillIntervalMS,
		Scopes:                input.Scopes,
		Metadata:              input.Metadata,
		CreatedAt:             now,
	}
	secret := &tenantDomain.ClientSecret{
		ID:         client.CurrentClientSecretID,
		ClientID:   client.ID,
		SecretHash: hash,
		Status:     tenantDomain.SecretStatusActive,
		ExpiresAt:  input.SecretExpiresAt,
		CreatedAt:  now,
	}

	err = u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := u.clientRepo.Create(txCtx, client); err != nil {
			return err
		}
		return u.clientSecretRepo.Create(txCtx, secret)
	})
	if err != nil {
		return nil, err
	}

	return &CreateClientOutput{Client: client, PlaintextSecret: plaintext}, nil
}

func (u *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error) {
	return u.clientRepo.Get(ctx, clientID)
}

func (u *clientUseCase) ListByAPI(
	ctx context.Context,
	apiID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.Client, error) {
	return u.clientRepo.ListByAPI(ctx, apiID, limit, offset)
}
