package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
	"github.com/keygateio/keygate/internal/database"
	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// workspaceUseCase implements WorkspaceUseCase.
type workspaceUseCase struct {
	txManager     database.TxManager
	workspaceRepo WorkspaceRepository
	envelope      cryptoService.Envelope
}

// NewWorkspaceUseCase creates a WorkspaceUseCase.
func NewWorkspaceUseCase(
	txManager database.TxManager,
	workspaceRepo WorkspaceRepository,
	envelope cryptoService.Envelope,
) WorkspaceUseCase {
	return &workspaceUseCase{
		txManager:     txManager,
		workspaceRepo: workspaceRepo,
		envelope:      envelope,
	}
}

// Create provisions a workspace together with its data key. All secret
// material later stored under the workspace is envelope-encrypted with this
// key.
func (u *workspaceUseCase) Create(ctx context.Context, input CreateWorkspaceInput) (*tenantDomain.Workspace, error) {
	if input.Name == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "workspace name is required")
	}
	plan := input.Plan
	if plan == "" {
		plan = tenantDomain.PlanFree
	}

	var workspace *tenantDomain.Workspace
	err := u.txManager.WithTx(ctx, func(txCtx context.Context) error {
		dataKey, err := u.envelope.CreateDataKey(txCtx)
		if err != nil {
			return err
		}

		workspace = &tenantDomain.Workspace{
			ID:                  uuid.Must(uuid.NewV7()),
			Name:                input.Name,
			DataEncryptionKeyID: dataKey.ID,
			Plan:                plan,
			MonthlyTokenQuota:   input.MonthlyTokenQuota,
			CreatedAt:           time.Now().UTC(),
		}
		return u.workspaceRepo.Create(txCtx, workspace)
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

func (u *workspaceUseCase) Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error) {
	return u.workspaceRepo.Get(ctx, workspaceID)
}

func (u *workspaceUseCase) List(ctx context.Context, limit, offset int) ([]*tenantDomain.Workspace, error) {
	return u.workspaceRepo.List(ctx, limit, offset)
}
