package commands

import (
	"context"
	"fmt"
	"log/slog"

	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// RunListWorkspaces lists provisioned workspaces. Workspace enumeration is an
// operator concern and is deliberately not exposed over the management HTTP
// API.
func RunListWorkspaces(
	ctx context.Context,
	workspaceUseCase tenantUseCase.WorkspaceUseCase,
	logger *slog.Logger,
	limit int,
	offset int,
	format string,
	io IOTuple,
) error {
	workspaces, err := workspaceUseCase.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}

	if format == "json" {
		result := make([]map[string]string, 0, len(workspaces))
		for _, workspace := range workspaces {
			result = append(result, map[string]string{
				"workspace_id": workspace.ID.String(),
				"name":         workspace.Name,
				"plan":         string(workspace.Plan),
			})
		}
		outputJSON(result, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Workspaces (%d):\n", len(workspaces))
		for _, workspace := range workspaces {
			_, _ = fmt.Fprintf(io.Writer, "  %s  %s (%s)\n", workspace.ID.String(), workspace.Name, workspace.Plan)
		}
	}

	logger.Info("workspaces listed", slog.Int("count", len(workspaces)))
	return nil
}
