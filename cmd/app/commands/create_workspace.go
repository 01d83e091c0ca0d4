package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// RunCreateWorkspace provisions a workspace together with its data encryption
// key. This is the bootstrap entry point: the first workspace and its root
// client must be created from the CLI because no management credentials exist
// yet.
//
// Requirements: Database must be migrated and the KMS keeper reachable.
func RunCreateWorkspace(
	ctx context.Context,
	workspaceUseCase tenantUseCase.WorkspaceUseCase,
	logger *slog.Logger,
	name string,
	plan string,
	monthlyTokenQuota int64,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new workspace", slog.String("name", name))

	input := tenantUseCase.CreateWorkspaceInput{
		Name:              name,
		Plan:              tenantDomain.Plan(plan),
		MonthlyTokenQuota: monthlyTokenQuota,
	}

	workspace, err := workspaceUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"workspace_id": workspace.ID.String(),
			"name":         workspace.Name,
			"plan":         string(workspace.Plan),
		}, io.Writer)
	} else {
		outputWorkspaceText(workspace, io.Writer)
	}

	logger.Info("workspace created successfully",
		slog.String("workspace_id", workspace.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputWorkspaceText outputs the result in human-readable text format.
func outputWorkspaceText(workspace *tenantDomain.Workspace, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nWorkspace created successfully!")
	_, _ = fmt.Fprintf(writer, "Workspace ID: %s\n", workspace.ID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", workspace.Name)
	_, _ = fmt.Fprintf(writer, "Plan: %s\n", workspace.Plan)
}
