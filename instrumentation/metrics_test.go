package instrumentation

import (
	"context"
	"sync"
	"testing"
)

func newTestInstrumentation(t *testing.T) *Instrumentation {
	t.Helper()
	inst, err := New(Config{Enabled: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })
	return inst
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx := context.Background()
	metrics := newTestInstrumentation(t).Metrics()

	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode int
		durationMs float64
	}{
		{"authentication", "POST", "/authentication", 200, 12.5},
		{"bad credentials", "POST", "/authentication", 401, 1.2},
		{"protected resource", "GET", "/me", 200, 45.67},
		{"introspection denial", "GET", "/saying", 403, 30.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics.RecordHTTPRequest(ctx, tt.method, tt.endpoint, tt.statusCode, tt.durationMs)
		})
	}
}

func TestMetrics_RecordDomainEvents(t *testing.T) {
	ctx := context.Background()
	metrics := newTestInstrumentation(t).Metrics()

	metrics.RecordAuthentication(ctx, "local", true)
	metrics.RecordAuthentication(ctx, "facebook", false)
	metrics.RecordClaimsCollected(ctx, "facebook", 4)
	metrics.RecordIntrospection(ctx, "OK", 20)
	metrics.RecordIntrospection(ctx, "INTERNAL_SERVER_ERROR", 5000)
	metrics.RecordRateLimitExceeded(ctx, "ip")
	metrics.RecordCredentialFailure(ctx, "/authentication")
	metrics.RecordStorageOperation(ctx, "get_profile", "success", 0.3)
	metrics.RecordProviderAPICall(ctx, "facebook", "collect_claims", 120, "")
	metrics.RecordProviderAPICall(ctx, "facebook", "collect_claims", 80, "unexpected_status")
	metrics.RecordAuditEvent(ctx, "auth_failure")
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	ctx := context.Background()
	metrics := newTestInstrumentation(t).Metrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				metrics.RecordAuthentication(ctx, "local", j%2 == 0)
				metrics.RecordIntrospection(ctx, "OK", float64(j))
			}
		}()
	}
	wg.Wait()
}
