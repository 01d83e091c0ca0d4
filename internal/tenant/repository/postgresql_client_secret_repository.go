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

// PostgreSQLClientSecretRepository implements client secret persistence for
// PostgreSQL. Only the SHA-256 hash of a secret is stored.
type PostgreSQLClientSecretRepository struct {
	db *sql.DB
}

// NewPostgreSQLClientSecretRepository creates a new PostgreSQL client secret repository.
func NewPostgreSQLClientSecretRepository(db *sql.DB) *PostgreSQLClientSecretRepository {
	return &PostgreSQLClientSecretRepository{db: db}
}

// Create inserts a new client secret.
func (p *PostgreSQLClientSecretRepository) Create(ctx context.Context, secret *tenantDomain.ClientSecret) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO client_secrets (id, client_id, secret_hash, status, expires_at, created_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.ClientID,
		secret.SecretHash,
		secret.Status,
		secret.ExpiresAt,
		secret.CreatedAt,
		secret.DeletedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client secret")
	}
	return nil
}

// Get retrieves a client secret by ID.
func (p *PostgreSQLClientSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.ClientSecret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, client_id, secret_hash, status, expires_at, created_at, deleted_at
			  FROM client_secrets
			  WHERE id = $1`

	var secret tenantDomain.ClientSecret
	err := querier.QueryRowContext(ctx, query, secretID).Scan(
		&secret.ID,
		&secret.ClientID,
		&secret.SecretHash,
		&secret.Status,
		&secret.ExpiresAt,
		&secret.CreatedAt,
		&secret.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenantDomain.ErrClientSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client secret")
	}

	return &secret, nil
}

// SetExpiry schedules expiry of a client secret at the given instant.
func (p *PostgreSQLClientSecretRepository) SetExpiry(ctx context.Context, secretID uuid.UUID, expiresAt time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE client_secrets SET expires_at = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, expiresAt, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to set client secret expiry")
	}

	return requireOneRow(result, tenantDomain.ErrClientSecretNotFound)
}

// Revoke soft-revokes a client secret. The row is kept for audit.
func (p *PostgreSQLClientSecretRepository) Revoke(ctx context.Context, secretID uuid.UUID, now time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE client_secrets
			  SET status = $1, deleted_at = $2
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, tenantDomain.SecretStatusRevoked, now, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke client secret")
	}

	return requireOneRow(result, tenantDomain.ErrClientSecretNotFound)
}
