// Package security holds the request-level protections shared by the sample
// servers: per-client rate limiting, audit logging with hashed identifiers,
// constant-time credential checks, response headers and request IDs.
//
// # Rate Limiting
//
// RateLimiter keeps one token bucket per identifier (normally the client IP).
// The number of tracked identifiers is bounded; when the bound is reached the
// least recently used bucket is dropped. Idle buckets are swept periodically.
//
//	limiter := security.NewRateLimiter(security.RateLimiterConfig{
//	    RequestsPerSecond: 10,
//	    Burst:             20,
//	}, logger)
//	defer limiter.Stop()
//
//	if !limiter.Allow(clientIP) {
//	    w.Header().Set("Retry-After", "60")
//	    w.WriteHeader(http.StatusTooManyRequests)
//	    return
//	}
//
// # Audit
//
// Auditor writes security events through slog. Subjects and user IDs are
// logged as truncated SHA-256 hashes, never in clear text.
package security
