package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// RunRotateSigningSecret opens a signing secret rotation window for an API.
// The CLI runs with operator privileges and acts as a root client for the
// API's workspace. The previous secret stays valid for expiresIn (the
// configured overlap when zero), after which the outbox worker finalizes the
// rotation.
//
// Requirements: Database must be migrated, the KMS keeper and the JWKS bucket
// reachable.
func RunRotateSigningSecret(
	ctx context.Context,
	rotationUC rotationUseCase.RotationUseCase,
	apiUseCase tenantUseCase.APIUseCase,
	logger *slog.Logger,
	apiID string,
	expiresIn time.Duration,
	format string,
	io IOTuple,
) error {
	parsedAPIID, err := uuid.Parse(apiID)
	if err != nil {
		return fmt.Errorf("invalid api id: %w", err)
	}

	api, err := apiUseCase.Get(ctx, parsedAPIID)
	if err != nil {
		return fmt.Errorf("failed to get api: %w", err)
	}

	logger.Info("rotating signing secret",
		slog.String("api_id", apiID),
		slog.Duration("expires_in", expiresIn),
	)

	// Operator override: act as a root client for the API's workspace.
	operator := &tenantDomain.Client{ForWorkspaceID: &api.WorkspaceID}

	newSecret, err := rotationUC.RotateSigningSecret(ctx, parsedAPIID, operator, expiresIn)
	if err != nil {
		return fmt.Errorf("failed to rotate signing secret: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"api_id":                parsedAPIID.String(),
			"new_signing_secret_id": newSecret.ID.String(),
		}, io.Writer)
	} else {
		_, _ = fmt.Fprintln(io.Writer, "\nSigning secret rotation started!")
		_, _ = fmt.Fprintf(io.Writer, "API ID: %s\n", parsedAPIID.String())
		_, _ = fmt.Fprintf(io.Writer, "New signing secret ID: %s\n", newSecret.ID.String())
		_, _ = fmt.Fprintln(io.Writer, "\nThe previous secret keeps verifying tokens until the overlap window closes.")
	}

	logger.Info("signing secret rotation started",
		slog.String("api_id", apiID),
		slog.String("new_signing_secret_id", newSecret.ID.String()),
	)

	return nil
}
