package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/metrics"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// workspaceUseCaseWithMetrics decorates WorkspaceUseCase with metrics instrumentation.
type workspaceUseCaseWithMetrics struct {
	next    WorkspaceUseCase
	metrics metrics.BusinessMetrics
}

// NewWorkspaceUseCaseWithMetrics wraps a WorkspaceUseCase with metrics recording.
func NewWorkspaceUseCaseWithMetrics(useCase WorkspaceUseCase, m metrics.BusinessMetrics) WorkspaceUseCase {
	return &workspaceUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (w *workspaceUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreateWorkspaceInput,
) (*tenantDomain.Workspace, error) {
	start := time.Now()
	workspace, err := w.next.Create(ctx, input)
	w.record(ctx, "workspace_create", start, err)
	return workspace, err
}

func (w *workspaceUseCaseWithMetrics) Get(
	ctx context.Context,
	workspaceID uuid.UUID,
) (*tenantDomain.Workspace, error) {
	start := time.Now()
	workspace, err := w.next.Get(ctx, workspaceID)
	w.record(ctx, "workspace_get", start, err)
	return workspace, err
}

func (w *workspaceUseCaseWithMetrics) List(
	ctx context.Context,
	limit, offset int,
) ([]*tenantDomain.Workspace, error) {
	start := time.Now()
	workspaces, err := w.next.List(ctx, limit, offset)
	w.record(ctx, "workspace_list", start, err)
	return workspaces, err
}

func (w *workspaceUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	w.metrics.RecordOperation(ctx, "tenant", operation, status)
	w.metrics.RecordDuration(ctx, "tenant", operation, time.Since(start), status)
}

// apiUseCaseWithMetrics decorates APIUseCase with metrics instrumentation.
type apiUseCaseWithMetrics struct {
	next    APIUseCase
	metrics metrics.BusinessMetrics
}

// NewAPIUseCaseWithMetrics wraps an APIUseCase with metrics recording.
func NewAPIUseCaseWithMetrics(useCase APIUseCase, m metrics.BusinessMetrics) APIUseCase {
	return &apiUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *apiUseCaseWithMetrics) Create(ctx context.Context, input CreateAPIInput) (*tenantDomain.API, error) {
	start := time.Now()
	api, err := a.next.Create(ctx, input)
	a.record(ctx, "api_create", start, err)
	return api, err
}

func (a *apiUseCaseWithMetrics) Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error) {
	start := time.Now()
	api, err := a.next.Get(ctx, apiID)
	a.record(ctx, "api_get", start, err)
	return api, err
}

func (a *apiUseCaseWithMetrics) ListByWorkspace(
	ctx context.Context,
	workspaceID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.API, error) {
	start := time.Now()
	apis, err := a.next.ListByWorkspace(ctx, workspaceID, limit, offset)
	a.record(ctx, "api_list", start, err)
	return apis, err
}

func (a *apiUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, "tenant", operation, status)
	a.metrics.RecordDuration(ctx, "tenant", operation, time.Since(start), status)
}

// clientUseCaseWithMetrics decorates ClientUseCase with metrics instrumentation.
type clientUseCaseWithMetrics struct {
	next    ClientUseCase
	metrics metrics.BusinessMetrics
}

// NewClientUseCaseWithMetrics wraps a ClientUseCase with metrics recording.
func NewClientUseCaseWithMetrics(useCase ClientUseCase, m metrics.BusinessMetrics) ClientUseCase {
	return &clientUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *clientUseCaseWithMetrics) Create(ctx context.Context, input CreateClientInput) (*CreateClientOutput, error) {
	start := time.Now()
	output, err := c.next.Create(ctx, input)
	c.record(ctx, "client_create", start, err)
	return output, err
}

func (c *clientUseCaseWithMetrics) Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Get(ctx, clientID)
	c.record(ctx, "client_get", start, err)
	return client, err
}

func (c *clientUseCaseWithMetrics) ListByAPI(
	ctx context.Context,
	apiID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.Client, error) {
	start := time.Now()
	clients, err := c.next.ListByAPI(ctx, apiID, limit, offset)
	c.record(ctx, "client_list", start, err)
	return clients, err
}

func (c *clientUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordOperation(ctx, "tenant", operation, status)
	c.metrics.RecordDuration(ctx, "tenant", operation, time.Since(start), status)
}
