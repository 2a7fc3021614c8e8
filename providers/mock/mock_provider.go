// Package mock provides mock implementations of the ClaimProvider interface for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/authlete/authlete-go-samples/claims"
	"github.com/authlete/authlete-go-samples/providers"
)

// Compile-time check that MockProvider implements providers.ClaimProvider.
var _ providers.ClaimProvider = (*MockProvider)(nil)

// MockProvider is a mock implementation of the ClaimProvider interface for testing
type MockProvider struct {
	// NameFunc is called when Name() is invoked
	NameFunc func() string

	// CollectClaimsFunc is called when CollectClaims() is invoked
	CollectClaimsFunc func(ctx context.Context, req providers.ClaimRequest) (claims.Values, error)

	// HealthCheckFunc is called when HealthCheck() is invoked
	HealthCheckFunc func(ctx context.Context) error

	// CallCounts tracks how many times each method was called
	CallCounts map[string]int

	// LastRequest is the most recent ClaimRequest received
	LastRequest providers.ClaimRequest

	// mu protects CallCounts and LastRequest from concurrent access
	mu sync.RWMutex
}

// NewMockProvider creates a new mock provider that answers given_name
// with the subject whenever it is requested.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		CallCounts: make(map[string]int),
		NameFunc: func() string {
			return "mock"
		},
		CollectClaimsFunc: func(ctx context.Context, req providers.ClaimRequest) (claims.Values, error) {
			for _, c := range req.Claims {
				if c == claims.ClaimGivenName {
					return claims.Values{claims.ClaimGivenName: req.Subject}, nil
				}
			}
			return nil, nil
		},
		HealthCheckFunc: func(ctx context.Context) error {
			return nil
		},
	}
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	// Release the lock before calling the user function, which might call
	// other mock methods.
	m.mu.Lock()
	m.CallCounts["Name"]++
	fn := m.NameFunc
	m.mu.Unlock()

	if fn == nil {
		return "mock"
	}
	return fn()
}

// CollectClaims returns the configured claim values
func (m *MockProvider) CollectClaims(ctx context.Context, req providers.ClaimRequest) (claims.Values, error) {
	m.mu.Lock()
	m.CallCounts["CollectClaims"]++
	m.LastRequest = req
	fn := m.CollectClaimsFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("CollectClaimsFunc not configured")
	}
	return fn(ctx, req)
}

// HealthCheck reports the configured health
func (m *MockProvider) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.CallCounts["HealthCheck"]++
	fn := m.HealthCheckFunc
	m.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// ResetCallCounts resets all call counters
func (m *MockProvider) ResetCallCounts() {
	m.mu.Lock()
	m.CallCounts = make(map[string]int)
	m.mu.Unlock()
}

// GetCallCount returns the number of times a method was called
func (m *MockProvider) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}

// GetLastRequest returns the most recent ClaimRequest
func (m *MockProvider) GetLastRequest() providers.ClaimRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequest
}
