package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/authlete/authlete-go-samples/instrumentation"
)

// Auditor writes security events with hashed identities.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
	metrics *instrumentation.Metrics
}

// NewAuditor creates an auditor. A disabled auditor drops every event.
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{logger: logger, enabled: enabled}
}

// SetMetrics counts every written event in m. Nil disables counting.
func (a *Auditor) SetMetrics(m *instrumentation.Metrics) {
	if a != nil {
		a.metrics = m
	}
}

// Event is a single audit record.
type Event struct {
	Type      string
	Subject   string
	ClientID  string
	IPAddress string
	Details   map[string]any
	Timestamp time.Time
}

// LogEvent writes event. Subject is hashed before it reaches the log.
func (a *Auditor) LogEvent(event Event) {
	if a == nil || !a.enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	a.logger.Info("security_audit",
		"event_type", event.Type,
		"subject_hash", HashForLogging(event.Subject),
		"client_id", event.ClientID,
		"ip_address", event.IPAddress,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
	if a.metrics != nil {
		a.metrics.RecordAuditEvent(context.Background(), event.Type)
	}
}

// LogAuthentication logs the outcome of an authentication callback.
func (a *Auditor) LogAuthentication(subject, clientID, ipAddress, source string) {
	a.LogEvent(Event{
		Type:      EventAuthenticationSucceeded,
		Subject:   subject,
		ClientID:  clientID,
		IPAddress: ipAddress,
		Details:   map[string]any{"source": source},
	})
}

// LogAuthFailure logs a rejected id/password pair.
func (a *Auditor) LogAuthFailure(subject, clientID, ipAddress, reason string) {
	a.LogEvent(Event{
		Type:      EventAuthFailure,
		Subject:   subject,
		ClientID:  clientID,
		IPAddress: ipAddress,
		Details:   map[string]any{"reason": reason},
	})
}

// LogCredentialFailure logs a request with missing or wrong API credentials.
func (a *Auditor) LogCredentialFailure(ipAddress, endpoint string) {
	a.LogEvent(Event{
		Type:      EventCredentialFailure,
		IPAddress: ipAddress,
		Details:   map[string]any{"endpoint": endpoint},
	})
}

// LogRateLimitExceeded logs a throttled request.
func (a *Auditor) LogRateLimitExceeded(ipAddress, endpoint string) {
	a.LogEvent(Event{
		Type:      EventRateLimitExceeded,
		IPAddress: ipAddress,
		Details:   map[string]any{"endpoint": endpoint},
	})
}

// LogAccessDenied logs a token rejected by introspection.
func (a *Auditor) LogAccessDenied(subject, ipAddress, action string, scopes []string) {
	a.LogEvent(Event{
		Type:      EventAccessDenied,
		Subject:   subject,
		IPAddress: ipAddress,
		Details: map[string]any{
			"action": action,
			"scopes": scopes,
		},
	})
}

// LogProviderFailure logs a claim provider error.
func (a *Auditor) LogProviderFailure(subject, provider, reason string) {
	a.LogEvent(Event{
		Type:    EventProviderFailure,
		Subject: subject,
		Details: map[string]any{
			"provider": provider,
			"reason":   reason,
		},
	})
}

// HashForLogging returns a short SHA-256 digest of a sensitive value.
func HashForLogging(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	sum := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(sum[:])[:16]
}
