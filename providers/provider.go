// Package providers defines the interface for claim providers and implements
// provider-specific logic for Facebook and the local profile store.
package providers

import (
	"context"
	"errors"

	"github.com/authlete/authlete-go-samples/claims"
)

// Sentinel errors returned (wrapped) by claim providers.
var (
	// ErrProviderUnavailable is returned when the provider cannot be reached.
	ErrProviderUnavailable = errors.New("claim provider unavailable")

	// ErrUnexpectedStatus is returned when the provider answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("claim provider returned unexpected status")

	// ErrMalformedProfile is returned when the provider response cannot be decoded.
	ErrMalformedProfile = errors.New("claim provider returned malformed profile")
)

// ClaimProvider answers requested claims about an end-user.
type ClaimProvider interface {
	// Name returns the provider name (e.g., "facebook", "local")
	Name() string

	// CollectClaims returns the formatted values of the requested claims.
	// A nil Values with a nil error means none of the requested claims
	// could be answered.
	CollectClaims(ctx context.Context, req ClaimRequest) (claims.Values, error)

	// HealthCheck verifies that the provider is reachable.
	HealthCheck(ctx context.Context) error
}

// ClaimRequest carries the inputs of a single claim lookup.
type ClaimRequest struct {
	// Claims are the raw requested claim names, possibly locale-qualified.
	Claims []string

	// Locales are the preferred claim locales, in order.
	Locales []string

	// Subject is the authenticated end-user identifier.
	Subject string

	// AccessToken is the social network access token, if any.
	AccessToken string
}
