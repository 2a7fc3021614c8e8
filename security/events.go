package security

// Audit event types.
const (
	// EventAuthenticationSucceeded is logged when the callback authenticates a user
	EventAuthenticationSucceeded = "authentication_succeeded"

	// EventAuthFailure is logged when a user's id/password pair is rejected
	EventAuthFailure = "auth_failure"

	// EventCredentialFailure is logged when a caller presents wrong API credentials
	EventCredentialFailure = "api_credential_failure"

	// EventRateLimitExceeded is logged when a client is throttled
	EventRateLimitExceeded = "rate_limit_exceeded"

	// EventAccessDenied is logged when introspection rejects an access token
	EventAccessDenied = "access_denied"

	// EventProviderFailure is logged when a claim provider cannot be reached
	EventProviderFailure = "claim_provider_failure"
)
