package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	"github.com/keygateio/keygate/internal/testutil"
)

// createClientWithSecret inserts a client and its first secret in one
// transaction, the same shape the management use case produces.
func createClientWithSecret(t *testing.T, db *sql.DB, apiID, workspaceID uuid.UUID) *tenantDomain.Client {
	t.Helper()

	bucketSize := int64(5)
	refillAmount := int64(5)
	refillInterval := int64(10000)

	client := &tenantDomain.Client{
		ID:                    uuid.Must(uuid.NewV7()),
		APIID:                 apiID,
		WorkspaceID:           workspaceID,
		Name:                  "billing-service",
		Version:               1,
		CurrentClientSecretID: uuid.Must(uuid.NewV7()),
		BucketSize:            &bucketSize,
		RefillAmount:          &refillAmount,
		RefillIntervalMS:      &refillInterval,
		Scopes:                []string{"read:orders"},
		Metadata:              map[string]any{"team": "billing"},
		CreatedAt:             time.Now().UTC(),
	}

	secret := &tenantDomain.ClientSecret{
		ID:         client.CurrentClientSecretID,
		ClientID:   client.ID,
		SecretHash: "a1b2c3",
		Status:     tenantDomain.SecretStatusActive,
		CreatedAt:  time.Now().UTC(),
	}

	clientRepo := NewPostgreSQLClientRepository(db)
	secretRepo := NewPostgreSQLClientSecretRepository(db)
	txManager := database.NewTxManager(db)

	err := txManager.WithTx(context.Background(), func(txCtx context.Context) error {
		if err := clientRepo.Create(txCtx, client); err != nil {
			return err
		}
		return secretRepo.Create(txCtx, secret)
	})
	require.NoError(t, err)

	return client
}

func TestPostgreSQLClientRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLClientRepository(db)

	workspaceID := testutil.CreateTestWorkspace(t, db, "acme")
	apiID := testutil.CreateTestAPI(t, db, workspaceID, "orders-api")
	client := createClientWithSecret(t, db, apiID, workspaceID)

	got, err := repo.Get(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, client.CurrentClientSecretID, got.CurrentClientSecretID)
	assert.Nil(t, got.NextClientSecretID)
	assert.Nil(t, got.ForWorkspaceID)
	assert.Equal(t, []string{"read:orders"}, got.Scopes)
	assert.Equal(t, map[string]any{"team": "billing"}, got.Metadata)
	require.NotNil(t, got.BucketSize)
	assert.Equal(t, int64(5), *got.BucketSize)
}

func TestPostgreSQLClientRepository_Get_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLClientRepository(db)

	_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLClientRepository_OpenSecretRotation(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	clientRepo := NewPostgreSQLClientRepository(db)
	secretRepo := NewPostgreSQLClientSecretRepository(db)

	workspaceID := testutil.CreateTestWorkspace(t, db, "acme")
	apiID := testutil.CreateTestAPI(t, db, workspaceID, "orders-api")
	client := createClientWithSecret(t, db, apiID, workspaceID)

	next := &tenantDomain.ClientSecret{
		ID:         uuid.Must(uuid.NewV7()),
		ClientID:   client.ID,
		SecretHash: "d4e5f6",
		Status:     tenantDomain.SecretStatusActive,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, secretRepo.Create(ctx, next))

	t.Run("bumps version together with the pointer", func(t *testing.T) {
		require.NoError(t, clientRepo.OpenSecretRotation(ctx, client.ID, client.CurrentClientSecretID, next.ID))

		got, err := clientRepo.Get(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		require.NotNil(t, got.NextClientSecretID)
		assert.Equal(t, next.ID, *got.NextClientSecretID)
	})

	t.Run("conflicts while a window is open", func(t *testing.T) {
		err := clientRepo.OpenSecretRotation(ctx, client.ID, client.CurrentClientSecretID, next.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("finalize swaps pointers and closes the window", func(t *testing.T) {
		require.NoError(t, clientRepo.FinalizeSecretRotation(ctx, client.ID, client.CurrentClientSecretID, next.ID))

		got, err := clientRepo.Get(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, next.ID, got.CurrentClientSecretID)
		assert.Nil(t, got.NextClientSecretID)
		assert.Equal(t, int64(2), got.Version, "finalization must not bump the version again")
	})
}
