package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// PostgreSQLAPIRepository implements API persistence for PostgreSQL.
//
// Scopes are stored as a native text[] column via pq.Array. The signing
// secret pointer columns are updated only through the guarded rotation
// methods below.
type PostgreSQLAPIRepository struct {
	db *sql.DB
}

// NewPostgreSQLAPIRepository creates a new PostgreSQL API repository.
func NewPostgreSQLAPIRepository(db *sql.DB) *PostgreSQLAPIRepository {
	return &PostgreSQLAPIRepository{db: db}
}

// Create inserts a new API.
func (p *PostgreSQLAPIRepository) Create(ctx context.Context, api *tenantDomain.API) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO apis (id, workspace_id, name, algorithm, token_expiration_seconds,
			  current_signing_secret_id, next_signing_secret_id, scopes, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		api.ID,
		api.WorkspaceID,
		api.Name,
		api.Algorithm,
		api.TokenExpirationSeconds,
		api.CurrentSigningSecretID,
		api.NextSigningSecretID,
		pq.Array(api.Scopes),
		api.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create api")
	}
	return nil
}

// Get retrieves an API by ID.
func (p *PostgreSQLAPIRepository) Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, workspace_id, name, algorithm, token_expiration_seconds,
			  current_signing_secret_id, next_signing_secret_id, scopes, created_at
			  FROM apis
			  WHERE id = $1`

	var api tenantDomain.API
	err := querier.QueryRowContext(ctx, query, apiID).Scan(
		&api.ID,
		&api.WorkspaceID,
		&api.Name,
		&api.Algorithm,
		&api.TokenExpirationSeconds,
		&api.CurrentSigningSecretID,
		&api.NextSigningSecretID,
		pq.Array(&api.Scopes),
		&api.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenantDomain.ErrAPINotFound
		}
		return nil, apperrors.Wrap(err, "failed to get api")
	}

	return &api, nil
}

// ListByWorkspace retrieves the APIs of a workspace ordered by creation time.
func (p *PostgreSQLAPIRepository) ListByWorkspace(
	ctx context.Context,
	workspaceID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.API, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, workspace_id, name, algorithm, token_expiration_seconds,
			  current_signing_secret_id, next_signing_secret_id, scopes, created_at
			  FROM apis
			  WHERE workspace_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list apis")
	}
	defer rows.Close() //nolint:errcheck

	var apis []*tenantDomain.API
	for rows.Next() {
		var api tenantDomain.API
		err := rows.Scan(
			&api.ID,
			&api.WorkspaceID,
			&api.Name,
			&api.Algorithm,
			&api.TokenExpirationSeconds,
			&api.CurrentSigningSecretID,
			&api.NextSigningSecretID,
			pq.Array(&api.Scopes),
			&api.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api")
		}
		apis = append(apis, &api)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list apis")
	}

	return apis, nil
}

// OpenRotation sets the next signing secret pointer, guarded by the expected
// current pointer. Returns ErrRotationConflict when a concurrent rotation
// already moved the pointer or a window is already open.
func (p *PostgreSQLAPIRepository) OpenRotation(
	ctx context.Context,
	apiID uuid.UUID,
	expectedCurrentID uuid.UUID,
	nextID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE apis
			  SET next_signing_secret_id = $1
			  WHERE id = $2
			    AND current_signing_secret_id = $3
			    AND next_signing_secret_id IS NULL`

	result, err := querier.ExecContext(ctx, query, nextID, apiID, expectedCurrentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to open signing secret rotation")
	}

	return requireOneRow(result, tenantDomain.ErrRotationConflict)
}

// FinalizeRotation promotes the next signing secret to current and closes the
// rotation window, guarded by the expected current pointer. Returns
// ErrRotationConflict when the pointer no longer matches.
func (p *PostgreSQLAPIRepository) FinalizeRotation(
	ctx context.Context,
	apiID uuid.UUID,
	expectedCurrentID uuid.UUID,
	newCurrentID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE apis
			  SET current_signing_secret_id = $1,
			      next_signing_secret_id = NULL
			  WHERE id = $2
			    AND current_signing_secret_id = $3`

	result, err := querier.ExecContext(ctx, query, newCurrentID, apiID, expectedCurrentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to finalize signing secret rotation")
	}

	return requireOneRow(result, tenantDomain.ErrRotationConflict)
}

// requireOneRow converts a zero-affected-rows result into the provided
// conflict error.
func requireOneRow(result sql.Result, conflict error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return conflict
	}
	return nil
}
