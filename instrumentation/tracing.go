package instrumentation

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never record access tokens, passwords or API secrets in
// traces or metrics. Only record metadata such as token presence, actions
// and claim names.
const (
	// Authentication callback attributes
	AttrClientID        = "authlete.client_id"
	AttrSubject         = "authlete.subject"
	AttrSNS             = "authlete.sns"
	AttrAuthenticated   = "authlete.authenticated"
	AttrClaimsRequested = "claims.requested"
	AttrClaimsReturned  = "claims.returned"

	// Introspection attributes
	AttrIntrospectionAction = "authlete.introspection.action"
	AttrRequiredScopes      = "authlete.introspection.scopes"
	AttrTokenPresent        = "authlete.token_present"

	// Storage attributes
	AttrStorageOperation = "storage.operation"
	AttrStorageResult    = "storage.result"
	AttrStorageType      = "storage.type"

	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"
	AttrProviderErrorType = "provider.error_type"

	// Security attributes
	AttrRateLimiterType = "security.rate_limiter.type"
	AttrClientIP        = "security.client_ip"
	AttrAuditEventType  = "security.audit.event_type"

	// HTTP attributes (in addition to standard semantic conventions)
	AttrHTTPEndpoint   = "http.endpoint"
	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanError sets an error status on a span (nil-safe)
func SetSpanError(span trace.Span, message string) {
	if span != nil {
		span.SetStatus(codes.Error, message)
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddAuthenticationAttributes adds authentication callback attributes to a span (nil-safe)
func AddAuthenticationAttributes(span trace.Span, clientID, sns string, requestedClaims int) {
	if clientID != "" {
		SetSpanAttributes(span, attribute.String(AttrClientID, clientID))
	}
	if sns != "" {
		SetSpanAttributes(span, attribute.String(AttrSNS, sns))
	}
	SetSpanAttributes(span, attribute.Int(AttrClaimsRequested, requestedClaims))
}

// AddIntrospectionAttributes adds introspection attributes to a span (nil-safe)
func AddIntrospectionAttributes(span trace.Span, action string, scopes []string) {
	if action != "" {
		SetSpanAttributes(span, attribute.String(AttrIntrospectionAction, action))
	}
	if len(scopes) > 0 {
		SetSpanAttributes(span, attribute.String(AttrRequiredScopes, strings.Join(scopes, " ")))
	}
}

// AddStorageAttributes adds storage operation attributes to a span (nil-safe)
func AddStorageAttributes(span trace.Span, operation, storageType string) {
	SetSpanAttributes(span,
		attribute.String(AttrStorageOperation, operation),
		attribute.String(AttrStorageType, storageType),
	)
}

// AddProviderAttributes adds provider attributes to a span (nil-safe)
func AddProviderAttributes(span trace.Span, providerName, operation string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, providerName),
		attribute.String(AttrProviderOperation, operation),
	)
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, method, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}

// AddSecurityAttributes adds security-related attributes to a span (nil-safe)
//
// Check ShouldLogClientIPs() before calling this function.
func AddSecurityAttributes(span trace.Span, clientIP string) {
	if clientIP != "" {
		SetSpanAttributes(span, attribute.String(AttrClientIP, clientIP))
	}
}
