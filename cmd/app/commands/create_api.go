package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// RunCreateAPI provisions an API with its initial signing secret. For rsa256
// APIs the public key is published to the JWKS bucket as part of creation.
//
// Requirements: Database must be migrated, the KMS keeper and the JWKS bucket
// reachable.
func RunCreateAPI(
	ctx context.Context,
	apiUseCase tenantUseCase.APIUseCase,
	logger *slog.Logger,
	workspaceID string,
	name string,
	algorithm string,
	tokenExpirationSeconds int64,
	scopes string,
	format string,
	io IOTuple,
) error {
	wsID, err := uuid.Parse(workspaceID)
	if err != nil {
		return fmt.Errorf("invalid workspace id: %w", err)
	}

	logger.Info("creating new api",
		slog.String("workspace_id", workspaceID),
		slog.String("name", name),
		slog.String("algorithm", algorithm),
	)

	input := tenantUseCase.CreateAPIInput{
		WorkspaceID:            wsID,
		Name:                   name,
		Algorithm:              tenantDomain.SigningAlgorithm(algorithm),
		TokenExpirationSeconds: tokenExpirationSeconds,
		Scopes:                 parseScopes(scopes),
	}

	api, err := apiUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create api: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"api_id":       api.ID.String(),
			"workspace_id": api.WorkspaceID.String(),
			"name":         api.Name,
			"algorithm":    string(api.Algorithm),
		}, io.Writer)
	} else {
		outputAPIText(api, io.Writer)
	}

	logger.Info("api created successfully",
		slog.String("api_id", api.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputAPIText outputs the result in human-readable text format.
func outputAPIText(api *tenantDomain.API, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nAPI created successfully!")
	_, _ = fmt.Fprintf(writer, "API ID: %s\n", api.ID.String())
	_, _ = fmt.Fprintf(writer, "Workspace ID: %s\n", api.WorkspaceID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", api.Name)
	_, _ = fmt.Fprintf(writer, "Algorithm: %s\n", api.Algorithm)
}
