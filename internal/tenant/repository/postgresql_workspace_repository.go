// Package repository implements tenancy persistence for PostgreSQL.
//
// Repositories store workspaces, APIs, clients, and their secrets. All
// methods support transaction context via database.GetTx(), so multi-row
// operations such as rotations commit atomically.
//
// Rotation pointer updates are guarded: the UPDATE carries the expected
// current secret id in its WHERE clause and reports zero affected rows when a
// concurrent rotation won the race, which callers surface as a conflict.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// PostgreSQLWorkspaceRepository implements workspace persistence for PostgreSQL.
type PostgreSQLWorkspaceRepository struct {
	db *sql.DB
}

// NewPostgreSQLWorkspaceRepository creates a new PostgreSQL workspace repository.
func NewPostgreSQLWorkspaceRepository(db *sql.DB) *PostgreSQLWorkspaceRepository {
	return &PostgreSQLWorkspaceRepository{db: db}
}

// Create inserts a new workspace.
func (p *PostgreSQLWorkspaceRepository) Create(ctx context.Context, workspace *tenantDomain.Workspace) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO workspaces (id, name, data_encryption_key_id, plan, monthly_token_quota, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		workspace.ID,
		workspace.Name,
		workspace.DataEncryptionKeyID,
		workspace.Plan,
		workspace.MonthlyTokenQuota,
		workspace.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create workspace")
	}
	return nil
}

// Get retrieves a workspace by ID.
func (p *PostgreSQLWorkspaceRepository) Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, data_encryption_key_id, plan, monthly_token_quota, created_at
			  FROM workspaces
			  WHERE id = $1`

	var workspace tenantDomain.Workspace
	err := querier.QueryRowContext(ctx, query, workspaceID).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.DataEncryptionKeyID,
		&workspace.Plan,
		&workspace.MonthlyTokenQuota,
		&workspace.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, tenantDomain.ErrWorkspaceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get workspace")
	}

	return &workspace, nil
}

// List retrieves workspaces ordered by creation time, newest first.
func (p *PostgreSQLWorkspaceRepository) List(ctx context.Context, limit, offset int) ([]*tenantDomain.Workspace, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, data_encryption_key_id, plan, monthly_token_quota, created_at
			  FROM workspaces
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list workspaces")
	}
	defer rows.Close() //nolint:errcheck

	var workspaces []*tenantDomain.Workspace
	for rows.Next() {
		var workspace tenantDomain.Workspace
		err := rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.DataEncryptionKeyID,
			&workspace.Plan,
			&workspace.MonthlyTokenQuota,
			&workspace.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan workspace")
		}
		workspaces = append(workspaces, &workspace)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list workspaces")
	}

	return workspaces, nil
}
