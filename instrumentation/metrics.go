package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments of the sample servers
type Metrics struct {
	// HTTP Layer Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Authentication Callback Metrics
	AuthenticationTotal metric.Int64Counter
	ClaimsCollected     metric.Int64Counter

	// Resource Server Metrics
	IntrospectionTotal    metric.Int64Counter
	IntrospectionDuration metric.Float64Histogram

	// Security Metrics
	RateLimitExceeded  metric.Int64Counter
	CredentialFailures metric.Int64Counter

	// Storage Metrics
	StorageOperationTotal    metric.Int64Counter
	StorageOperationDuration metric.Float64Histogram
	StorageProfilesCount     metric.Int64ObservableGauge

	// Provider Metrics
	ProviderAPICallsTotal metric.Int64Counter
	ProviderAPIDuration   metric.Float64Histogram
	ProviderAPIErrors     metric.Int64Counter

	// Audit Metrics
	AuditEventsTotal metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}

	httpMeter := inst.Meter("http")
	serverMeter := inst.Meter("server")
	authleteMeter := inst.Meter("authlete")
	securityMeter := inst.Meter("security")
	storageMeter := inst.Meter("storage")
	providerMeter := inst.Meter("provider")

	var err error

	// HTTP Layer Metrics
	m.HTTPRequestsTotal, err = httpMeter.Int64Counter(
		"samples.http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.requests.total counter: %w", err)
	}

	m.HTTPRequestDuration, err = httpMeter.Float64Histogram(
		"samples.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.request.duration histogram: %w", err)
	}

	// Authentication Callback Metrics
	m.AuthenticationTotal, err = serverMeter.Int64Counter(
		"samples.authentication.total",
		metric.WithDescription("Number of end-user authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authentication.total counter: %w", err)
	}

	m.ClaimsCollected, err = serverMeter.Int64Counter(
		"samples.claims.collected",
		metric.WithDescription("Number of claim values returned to the authorization server"),
		metric.WithUnit("{claim}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create claims.collected counter: %w", err)
	}

	// Resource Server Metrics
	m.IntrospectionTotal, err = authleteMeter.Int64Counter(
		"samples.introspection.total",
		metric.WithDescription("Number of token introspections by resulting action"),
		metric.WithUnit("{introspection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create introspection.total counter: %w", err)
	}

	m.IntrospectionDuration, err = authleteMeter.Float64Histogram(
		"samples.introspection.duration",
		metric.WithDescription("Token introspection duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create introspection.duration histogram: %w", err)
	}

	// Security Metrics
	m.RateLimitExceeded, err = securityMeter.Int64Counter(
		"samples.rate_limit.exceeded",
		metric.WithDescription("Number of rate limit violations"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate_limit.exceeded counter: %w", err)
	}

	m.CredentialFailures, err = securityMeter.Int64Counter(
		"samples.credentials.failed",
		metric.WithDescription("Number of rejected API caller credentials"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials.failed counter: %w", err)
	}

	// Storage Metrics
	m.StorageOperationTotal, err = storageMeter.Int64Counter(
		"samples.storage.operations.total",
		metric.WithDescription("Total number of storage operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.operations.total counter: %w", err)
	}

	m.StorageOperationDuration, err = storageMeter.Float64Histogram(
		"samples.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.operation.duration histogram: %w", err)
	}

	m.StorageProfilesCount, err = storageMeter.Int64ObservableGauge(
		"samples.storage.profiles.count",
		metric.WithDescription("Number of stored end-user profiles"),
		metric.WithUnit("{profile}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage.profiles.count gauge: %w", err)
	}

	// Provider Metrics
	m.ProviderAPICallsTotal, err = providerMeter.Int64Counter(
		"samples.provider.api.calls.total",
		metric.WithDescription("Total number of claim provider calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.calls.total counter: %w", err)
	}

	m.ProviderAPIDuration, err = providerMeter.Float64Histogram(
		"samples.provider.api.duration",
		metric.WithDescription("Claim provider call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	m.ProviderAPIErrors, err = providerMeter.Int64Counter(
		"samples.provider.api.errors",
		metric.WithDescription("Number of failed claim provider calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors counter: %w", err)
	}

	// Audit Metrics
	m.AuditEventsTotal, err = securityMeter.Int64Counter(
		"samples.audit.events.total",
		metric.WithDescription("Number of audit events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit.events.total counter: %w", err)
	}

	return m, nil
}

// Helper methods for common metric recording patterns

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, endpoint string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
		attribute.Int("status", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, durationMs, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordAuthentication records the outcome of an end-user credential check.
// source names the claim provider consulted ("local", "facebook", ...).
func (m *Metrics) RecordAuthentication(ctx context.Context, source string, authenticated bool) {
	m.AuthenticationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("authenticated", authenticated),
	))
}

// RecordClaimsCollected records how many claim values a provider returned
func (m *Metrics) RecordClaimsCollected(ctx context.Context, provider string, count int) {
	m.ClaimsCollected.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("provider", provider),
	))
}

// RecordIntrospection records a token introspection and its resulting action
func (m *Metrics) RecordIntrospection(ctx context.Context, action string, durationMs float64) {
	m.IntrospectionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
	))
	m.IntrospectionDuration.Record(ctx, durationMs)
}

// RecordRateLimitExceeded records a rate limit violation
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, limiterType string) {
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter_type", limiterType),
	))
}

// RecordCredentialFailure records a rejected API caller
func (m *Metrics) RecordCredentialFailure(ctx context.Context, endpoint string) {
	m.CredentialFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

// RecordStorageOperation records a storage operation
func (m *Metrics) RecordStorageOperation(ctx context.Context, operation, result string, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("result", result),
	}

	m.StorageOperationTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.StorageOperationDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordProviderAPICall records a claim provider call.
// errorType is empty for successful calls.
func (m *Metrics) RecordProviderAPICall(ctx context.Context, provider, operation string, durationMs float64, errorType string) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Bool("success", errorType == ""),
	}

	m.ProviderAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ProviderAPIDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
	))

	if errorType != "" {
		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("operation", operation),
			attribute.String("error_type", errorType),
		))
	}
}

// RecordAuditEvent records an audit event
func (m *Metrics) RecordAuditEvent(ctx context.Context, eventType string) {
	m.AuditEventsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}
