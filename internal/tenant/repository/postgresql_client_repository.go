package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// PostgreSQLClientRepository implements client persistence for PostgreSQL.
//
// Metadata is stored as JSONB, scopes as text[]. OpenSecretRotation bumps the
// client version in the same guarded UPDATE that moves the secret pointer, so
// version and pointer can never diverge.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// NewPostgreSQLClientRepository creates a new PostgreSQL client repository.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}

// Create inserts a new client.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *tenantDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	metadata, err := marshalMetadata(client.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO clients (id, api_id, workspace_id, for_workspace_id, name, version,
			  current_client_secret_id, next_client_secret_id, bucket_size, refill_amount,
			  refill_interval_ms, scopes, metadata, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.APIID,
		client.WorkspaceID,
		client.ForWorkspaceID,
		client.Name,
		client.Version,
		client.CurrentClientSecretID,
		client.NextClientSecretID,
		client.BucketSize,
		client.RefillAmount,
		client.RefillIntervalMS,
		pq.Array(client.Scopes),
		metadata,
		client.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// Get retrieves a client by ID.
func (p *PostgreSQLClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, api_id, workspace_id, for_workspace_id, name, version,
			  current_client_secret_id, next_client_secret_id, bucket_size, refill_amount,
			  refill_interval_ms, scopes, metadata, created_at
			  FROM clients
			  WHERE id = $1`

	var client tenantDomain.Client
	var metadata []byte
	err := querier.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.APIID,
		&client.WorkspaceID,
		&client.ForWorkspaceID,
		&client.Name,
		&client.Version,
		&client.CurrentClientSecretID,
		&client.NextClientSecretID,
		&client.BucketSize,
		&client.RefillAmount,
		&client.RefillIntervalMS,
		pq.Array(&client.Scopes),
		&metadata,
		&client.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenantDomain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client")
	}

	if client.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, err
	}

	return &client, nil
}

// ListByAPI retrieves the clients of an API ordered by creation time.
func (p *PostgreSQLClientRepository) ListByAPI(
	ctx context.Context,
	apiID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, api_id, workspace_id, for_workspace_id, name, version,
			  current_client_secret_id, next_client_secret_id, bucket_size, refill_amount,
			  refill_interval_ms, scopes, metadata, created_at
			  FROM clients
			  WHERE api_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, apiID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list clients")
	}
	defer rows.Close() //nolint:errcheck

	var clients []*tenantDomain.Client
	for rows.Next() {
		var client tenantDomain.Client
		var metadata []byte
		err := rows.Scan(
			&client.ID,
			&client.APIID,
			&client.WorkspaceID,
			&client.ForWorkspaceID,
			&client.Name,
			&client.Version,
			&client.CurrentClientSecretID,
			&client.NextClientSecretID,
			&client.BucketSize,
			&client.RefillAmount,
			&client.RefillIntervalMS,
			pq.Array(&client.Scopes),
			&metadata,
			&client.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan client")
		}
		if client.Metadata, err = unmarshalMetadata(metadata); err != nil {
			return nil, err
		}
		clients = append(clients, &client)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list clients")
	}

	return clients, nil
}

// OpenSecretRotation sets the next client secret pointer and bumps the client
// version, guarded by the expected current pointer. The version bump is
// immediate: tokens issued before the rotation fail verification from this
// point on. Returns ErrRotationConflict when a concurrent rotation already
// moved the pointer or a window is already open.
func (p *PostgreSQLClientRepository) OpenSecretRotation(
	ctx context.Context,
	clientID uuid.UUID,
	expectedCurrentID uuid.UUID,
	nextID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients
			  SET next_client_secret_id = $1,
			      version = version + 1
			  WHERE id = $2
			    AND current_client_secret_id = $3
			    AND next_client_secret_id IS NULL`

	result, err := querier.ExecContext(ctx, query, nextID, clientID, expectedCurrentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to open client secret rotation")
	}

	return requireOneRow(result, tenantDomain.ErrRotationConflict)
}

// FinalizeSecretRotation promotes the next client secret to current and
// closes the rotation window, guarded by the expected current pointer.
func (p *PostgreSQLClientRepository) FinalizeSecretRotation(
	ctx context.Context,
	clientID uuid.UUID,
	expectedCurrentID uuid.UUID,
	newCurrentID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients
			  SET current_client_secret_id = $1,
			      next_client_secret_id = NULL
			  WHERE id = $2
			    AND current_client_secret_id = $3`

	result, err := querier.ExecContext(ctx, query, newCurrentID, clientID, expectedCurrentID)
	if err != nil {
		return apperrors.Wrap(err, "failed to finalize client secret rotation")
	}

	return requireOneRow(result, tenantDomain.ErrRotationConflict)
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal client metadata")
	}
	return data, nil
}

func unmarshalMetadata(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client metadata")
	}
	return metadata, nil
}
