package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
)

// RunRotateClientSecret opens a client secret rotation window. The client's
// version bumps immediately, invalidating all outstanding tokens; the old
// secret keeps authenticating until the window closes. Outputs the new
// plaintext secret exactly once.
//
// Requirements: Database must be migrated and accessible.
func RunRotateClientSecret(
	ctx context.Context,
	rotationUC rotationUseCase.RotationUseCase,
	logger *slog.Logger,
	clientID string,
	expiresIn time.Duration,
	format string,
	io IOTuple,
) error {
	parsedClientID, err := uuid.Parse(clientID)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}

	logger.Info("rotating client secret",
		slog.String("client_id", clientID),
		slog.Duration("expires_in", expiresIn),
	)

	output, err := rotationUC.RotateClientSecret(ctx, parsedClientID, expiresIn)
	if err != nil {
		return fmt.Errorf("failed to rotate client secret: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"client_id": parsedClientID.String(),
			"secret_id": output.SecretID.String(),
			"secret":    output.PlaintextSecret,
		}, io.Writer)
	} else {
		_, _ = fmt.Fprintln(io.Writer, "\nClient secret rotation started!")
		_, _ = fmt.Fprintf(io.Writer, "Client ID: %s\n", parsedClientID.String())
		_, _ = fmt.Fprintf(io.Writer, "New secret ID: %s\n", output.SecretID.String())
		_, _ = fmt.Fprintf(io.Writer, "New secret: %s\n", output.PlaintextSecret)
		_, _ = fmt.Fprintln(io.Writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
	}

	logger.Info("client secret rotation started",
		slog.String("client_id", clientID),
		slog.String("secret_id", output.SecretID.String()),
	)

	return nil
}
