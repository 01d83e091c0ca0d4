package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/metrics"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *rotationUseCaseWithMetrics) RotateSigningSecret(
	ctx context.Context,
	apiID uuid.UUID,
	rotatedBy *tenantDomain.Client,
	expiresIn time.Duration,
) (*tenantDomain.SigningSecret, error) {
	start := time.Now()
	secret, err := r.next.RotateSigningSecret(ctx, apiID, rotatedBy, expiresIn)
	r.record(ctx, "signing_secret_rotate", start, err)
	return secret, err
}

func (r *rotationUseCaseWithMetrics) RotateClientSecret(
	ctx context.Context,
	clientID uuid.UUID,
	expiresIn time.Duration,
) (*RotateClientSecretOutput, error) {
	start := time.Now()
	output, err := r.next.RotateClientSecret(ctx, clientID, expiresIn)
	r.record(ctx, "client_secret_rotate", start, err)
	return output, err
}

func (r *rotationUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "rotation", operation, status)
	r.metrics.RecordDuration(ctx, "rotation", operation, time.Since(start), status)
}
