package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// PostgreSQLSigningSecretRepository implements signing secret persistence for
// PostgreSQL. Secret material is stored envelope-encrypted (BYTEA); rows are
// soft-revoked, never deleted.
type PostgreSQLSigningSecretRepository struct {
	db *sql.DB
}

// NewPostgreSQLSigningSecretRepository creates a new PostgreSQL signing secret repository.
func NewPostgreSQLSigningSecretRepository(db *sql.DB) *PostgreSQLSigningSecretRepository {
	return &PostgreSQLSigningSecretRepository{db: db}
}

// Create inserts a new signing secret.
func (p *PostgreSQLSigningSecretRepository) Create(ctx context.Context, secret *tenantDomain.SigningSecret) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO signing_secrets (id, workspace_id, algorithm, secret, iv, status, expires_at, created_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.WorkspaceID,
		secret.Algorithm,
		secret.Secret,
		secret.IV,
		secret.Status,
		secret.ExpiresAt,
		secret.CreatedAt,
		secret.DeletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create signing secret")
	}
	return nil
}

// Get retrieves a signing secret by ID.
func (p *PostgreSQLSigningSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.SigningSecret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, workspace_id, algorithm, secret, iv, status, expires_at, created_at, deleted_at
			  FROM signing_secrets
			  WHERE id = $1`

	var secret tenantDomain.SigningSecret
	err := querier.QueryRowContext(ctx, query, secretID).Scan(
		&secret.ID,
		&secret.WorkspaceID,
		&secret.Algorithm,
		&secret.Secret,
		&secret.IV,
		&secret.Status,
		&secret.ExpiresAt,
		&secret.CreatedAt,
		&secret.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenantDomain.ErrSigningSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get signing secret")
	}

	return &secret, nil
}

// SetExpiry schedules revocation of a signing secret at the given instant.
func (p *PostgreSQLSigningSecretRepository) SetExpiry(ctx context.Context, secretID uuid.UUID, expiresAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE signing_secrets SET expires_at = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, expiresAt, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set signing secret expiry")
	}

	return requireOneRow(result, tenantDomain.ErrSigningSecretNotFound)
}

// Revoke soft-revokes a signing secret. The row is kept for audit.
func (p *PostgreSQLSigningSecretRepository) Revoke(ctx context.Context, secretID uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE signing_secrets
			  SET status = $1, deleted_at = $2
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, tenantDomain.SecretStatusRevoked, now, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke signing secret")
	}

	return requireOneRow(result, tenantDomain.ErrSigningSecretNotFound)
}
