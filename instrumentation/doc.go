// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for the
// authentication callback server and the resource server.
//
// # Quick Start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "resource-server",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	r.Handle("/metrics", inst.MetricsHandler())
//
// When enabled, metrics are collected by the OpenTelemetry SDK and exposed
// through a Prometheus registry. When disabled, no-op providers are used and
// the metrics handler answers 404.
//
// # Available Metrics
//
// HTTP Layer:
//   - samples.http.requests.total{method, endpoint, status}
//   - samples.http.request.duration{endpoint} (ms)
//
// Authentication callback:
//   - samples.authentication.total{source, authenticated}
//   - samples.claims.collected{provider}
//
// Resource server:
//   - samples.introspection.total{action}
//   - samples.introspection.duration (ms)
//
// Security:
//   - samples.rate_limit.exceeded{limiter_type}
//   - samples.credentials.failed{endpoint}
//   - samples.audit.events.total{event_type}
//
// Storage:
//   - samples.storage.operations.total{operation, result}
//   - samples.storage.operation.duration{operation} (ms)
//   - samples.storage.profiles.count
//
// Provider:
//   - samples.provider.api.calls.total{provider, operation, success}
//   - samples.provider.api.duration{provider, operation} (ms)
//   - samples.provider.api.errors{provider, operation, error_type}
//
// # Distributed Tracing
//
// Example span structure:
//
//	authentication.authenticate
//	└── provider.collect_claims
//	    └── storage.get_profile
//	authlete.introspect
//
// # Security Considerations
//
// Access tokens, end-user passwords and API secrets are never recorded.
// Subjects appear in spans only; audit logs hash them (see package security).
package instrumentation
