package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// RunCreateClient provisions a client of an API together with its first
// secret. When forWorkspaceID is set the client becomes a root client for
// that workspace, able to call the management API on its behalf; this is how
// the bootstrap root client is minted.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase tenantUseCase.ClientUseCase,
	logger *slog.Logger,
	apiID string,
	name string,
	forWorkspaceID string,
	scopes string,
	format string,
	io IOTuple,
) error {
	parsedAPIID, err := uuid.Parse(apiID)
	if err != nil {
		return fmt.Errorf("invalid api id: %w", err)
	}

	var forWS *uuid.UUID
	if forWorkspaceID != "" {
		parsed, err := uuid.Parse(forWorkspaceID)
		if err != nil {
			return fmt.Errorf("invalid for-workspace id: %w", err)
		}
		forWS = &parsed
	}

	logger.Info("creating new client",
		slog.String("api_id", apiID),
		slog.String("name", name),
	)

	input := tenantUseCase.CreateClientInput{
		APIID:          parsedAPIID,
		Name:           name,
		ForWorkspaceID: forWS,
		Scopes:         parseScopes(scopes),
	}

	output, err := clientUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"client_id": output.Client.ID.String(),
			"secret":    output.PlaintextSecret,
		}, io.Writer)
	} else {
		outputClientText(output, io.Writer)
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.Client.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputClientText outputs the result in human-readable text format.
func outputClientText(output *tenantUseCase.CreateClientOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nClient created successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", output.Client.ID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlaintextSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}
