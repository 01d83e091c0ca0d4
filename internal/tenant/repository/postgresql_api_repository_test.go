package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	"github.com/keygateio/keygate/internal/testutil"
)

func buildTestAPI(workspaceID, secretID uuid.UUID) *tenantDomain.API {
	return &tenantDomain.API{
		ID:                     uuid.Must(uuid.NewV7()),
		WorkspaceID:            workspaceID,
		Name:                   "orders-api",
		Algorithm:              tenantDomain.AlgorithmHS256,
		TokenExpirationSeconds: 3600,
		CurrentSigningSecretID: secretID,
		Scopes:                 []string{"read:orders", "write:orders"},
		CreatedAt:              time.Now().UTC(),
	}
}

func TestPostgreSQLAPIRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLAPIRepository(db)

	workspaceID := testutil.CreateTestWorkspace(t, db, "acme")
	secretID := testutil.CreateTestSigningSecret(t, db, workspaceID)
	api := buildTestAPI(workspaceID, secretID)

	require.NoError(t, repo.Create(ctx, api))

	got, err := repo.Get(ctx, api.ID)
	require.NoError(t, err)
	assert.Equal(t, api.ID, got.ID)
	assert.Equal(t, api.WorkspaceID, got.WorkspaceID)
	assert.Equal(t, tenantDomain.AlgorithmHS256, got.Algorithm)
	assert.Equal(t, int64(3600), got.TokenExpirationSeconds)
	assert.Equal(t, secretID, got.CurrentSigningSecretID)
	assert.Nil(t, got.NextSigningSecretID)
	assert.Equal(t, []string{"read:orders", "write:orders"}, got.Scopes)
}

func TestPostgreSQLAPIRepository_Get_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLAPIRepository(db)

	_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLAPIRepository_OpenRotation(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLAPIRepository(db)

	workspaceID := testutil.CreateTestWorkspace(t, db, "acme")
	secretID := testutil.CreateTestSigningSecret(t, db, workspaceID)
	api := buildTestAPI(workspaceID, secretID)
	require.NoError(t, repo.Create(ctx, api))

	nextID := testutil.CreateTestSigningSecret(t, db, workspaceID)

	t.Run("opens window when pointer matches", func(t *testing.T) {
		require.NoError(t, repo.OpenRotation(ctx, api.ID, secretID, nextID))

		got, err := repo.Get(ctx, api.ID)
		require.NoError(t, err)
		require.NotNil(t, got.NextSigningSecretID)
		assert.Equal(t, nextID, *got.NextSigningSecretID)
	})

	t.Run("conflicts while a window is open", func(t *testing.T) {
		otherID := testutil.CreateTestSigningSecret(t, db, workspaceID)
		err := repo.OpenRotation(ctx, api.ID, secretID, otherID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("conflicts when expected pointer is stale", func(t *testing.T) {
		err := repo.OpenRotation(ctx, api.ID, uuid.Must(uuid.NewV7()), nextID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLAPIRepository_FinalizeRotation(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLAPIRepository(db)

	workspaceID := testutil.CreateTestWorkspace(t, db, "acme")
	secretID := testutil.CreateTestSigningSecret(t, db, workspaceID)
	api := buildTestAPI(workspaceID, secretID)
	require.NoError(t, repo.Create(ctx, api))

	nextID := testutil.CreateTestSigningSecret(t, db, workspaceID)
	require.NoError(t, repo.OpenRotation(ctx, api.ID, secretID, nextID))

	require.NoError(t, repo.FinalizeRotation(ctx, api.ID, secretID, nextID))

	got, err := repo.Get(ctx, api.ID)
	require.NoError(t, err)
	assert.Equal(t, nextID, got.CurrentSigningSecretID)
	assert.Nil(t, got.NextSigningSecretID)

	// A redelivered finalization sees a moved pointer and conflicts, which
	// the consumer treats as already finalized.
	err = repo.FinalizeRotation(ctx, api.ID, secretID, nextID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
