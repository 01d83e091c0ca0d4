package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TokenMetrics records token lifecycle events. Emission is best-effort and
// fire-and-forget: recording never gates the issuance or verification response.
type TokenMetrics interface {
	// RecordTokenGenerated records a successfully issued token.
	RecordTokenGenerated(ctx context.Context, workspaceID, apiID, clientID string)

	// RecordTokenVerified records a terminal verification outcome.
	// deniedReason is empty for successful verifications.
	RecordTokenVerified(ctx context.Context, workspaceID, apiID, clientID, deniedReason string)
}

// tokenMetrics implements TokenMetrics using OpenTelemetry metrics.
type tokenMetrics struct {
	generatedCounter metric.Int64Counter
	verifiedCounter  metric.Int64Counter
}

// NewTokenMetrics creates a new TokenMetrics implementation using the provided meter provider.
func NewTokenMetrics(meterProvider metric.MeterProvider, namespace string) (TokenMetrics, error) {
	meter := meterProvider.Meter(namespace)

	generatedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_tokens_generated_total", namespace),
		metric.WithDescription("Total number of tokens issued"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token generated counter: %w", err)
	}

	verifiedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_tokens_verified_total", namespace),
		metric.WithDescription("Total number of token verifications by outcome"),
		metric.WithUnit("{verification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verified counter: %w", err)
	}

	return &tokenMetrics{
		generatedCounter: generatedCounter,
		verifiedCounter:  verifiedCounter,
	}, nil
}

// RecordTokenGenerated increments the issued-token counter.
func (t *tokenMetrics) RecordTokenGenerated(ctx context.Context, workspaceID, apiID, clientID string) {
	t.generatedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("workspace_id", workspaceID),
			attribute.String("api_id", apiID),
			attribute.String("client_id", clientID),
		),
	)
}

// RecordTokenVerified increments the verification counter with the outcome label.
func (t *tokenMetrics) RecordTokenVerified(
	ctx context.Context,
	workspaceID, apiID, clientID, deniedReason string,
) {
	outcome := "valid"
	if deniedReason != "" {
		outcome = deniedReason
	}

	t.verifiedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("workspace_id", workspaceID),
			attribute.String("api_id", apiID),
			attribute.String("client_id", clientID),
			attribute.String("outcome", outcome),
		),
	)
}
