package security

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/authlete/authlete-go-samples/instrumentation"
)

func newTestAuditor(enabled bool) (*Auditor, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewAuditor(logger, enabled), &buf
}

func TestAuditor_LogEvent(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		a, buf := newTestAuditor(true)
		a.LogEvent(Event{Type: "test_event", Subject: "alice", IPAddress: "192.0.2.1"})

		out := buf.String()
		if !strings.Contains(out, "event_type=test_event") {
			t.Errorf("missing event type in %q", out)
		}
		if strings.Contains(out, "alice") {
			t.Errorf("subject leaked in clear text: %q", out)
		}
		if !strings.Contains(out, HashForLogging("alice")) {
			t.Errorf("missing subject hash in %q", out)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		a, buf := newTestAuditor(false)
		a.LogEvent(Event{Type: "test_event"})
		if buf.Len() != 0 {
			t.Errorf("disabled auditor wrote %q", buf.String())
		}
	})

	t.Run("nil auditor", func(t *testing.T) {
		var a *Auditor
		a.LogEvent(Event{Type: "test_event"})
	})
}

func TestAuditor_Helpers(t *testing.T) {
	tests := []struct {
		name      string
		log       func(a *Auditor)
		eventType string
	}{
		{
			name:      "authentication",
			log:       func(a *Auditor) { a.LogAuthentication("alice", "1234", "192.0.2.1", "local") },
			eventType: EventAuthenticationSucceeded,
		},
		{
			name:      "auth failure",
			log:       func(a *Auditor) { a.LogAuthFailure("alice", "1234", "192.0.2.1", "invalid password") },
			eventType: EventAuthFailure,
		},
		{
			name:      "credential failure",
			log:       func(a *Auditor) { a.LogCredentialFailure("192.0.2.1", "/authentication") },
			eventType: EventCredentialFailure,
		},
		{
			name:      "rate limit",
			log:       func(a *Auditor) { a.LogRateLimitExceeded("192.0.2.1", "/me") },
			eventType: EventRateLimitExceeded,
		},
		{
			name:      "access denied",
			log:       func(a *Auditor) { a.LogAccessDenied("", "192.0.2.1", "UNAUTHORIZED", []string{"profile"}) },
			eventType: EventAccessDenied,
		},
		{
			name:      "provider failure",
			log:       func(a *Auditor) { a.LogProviderFailure("alice", "facebook", "unavailable") },
			eventType: EventProviderFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, buf := newTestAuditor(true)
			tt.log(a)
			if !strings.Contains(buf.String(), "event_type="+tt.eventType) {
				t.Errorf("log %q does not contain event type %s", buf.String(), tt.eventType)
			}
		})
	}
}

func TestHashForLogging(t *testing.T) {
	if got := HashForLogging(""); got != "<empty>" {
		t.Errorf("HashForLogging(\"\") = %q", got)
	}
	h := HashForLogging("alice")
	if len(h) != 16 {
		t.Errorf("hash length = %d, want 16", len(h))
	}
	if h != HashForLogging("alice") {
		t.Error("hash is not stable")
	}
	if h == HashForLogging("bob") {
		t.Error("different inputs produced the same hash")
	}
}

func TestAuditor_SetMetrics(t *testing.T) {
	inst, err := instrumentation.New(instrumentation.Config{Enabled: true})
	if err != nil {
		t.Fatalf("instrumentation.New() error = %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	a, _ := newTestAuditor(true)
	a.SetMetrics(inst.Metrics())
	a.LogRateLimitExceeded("192.0.2.1", "/authentication")

	disabled, _ := newTestAuditor(false)
	disabled.SetMetrics(inst.Metrics())
	disabled.LogEvent(Event{Type: "dropped_event"})

	rec := httptest.NewRecorder()
	inst.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), "samples_audit_events") {
		t.Fatalf("audit counter missing from metrics output")
	}
	if !strings.Contains(string(body), `event_type="`+EventRateLimitExceeded+`"`) {
		t.Errorf("rate limit event not counted")
	}
	if strings.Contains(string(body), "dropped_event") {
		t.Error("disabled auditor should not count events")
	}

	var nilAuditor *Auditor
	nilAuditor.SetMetrics(inst.Metrics())
}
