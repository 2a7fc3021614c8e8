// Package mock provides mock implementations of storage interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/authlete/authlete-go-samples/storage"
)

// Compile-time interface check
var _ storage.ProfileStore = (*MockProfileStore)(nil)

// MockProfileStore is a mock implementation of ProfileStore for testing
type MockProfileStore struct {
	mu                sync.RWMutex
	profiles          map[string]*storage.Profile
	GetProfileFunc    func(ctx context.Context, subject string) (*storage.Profile, error)
	SaveProfileFunc   func(ctx context.Context, profile *storage.Profile) error
	DeleteProfileFunc func(ctx context.Context, subject string) error
	CallCounts        map[string]int
}

// NewMockProfileStore creates a new mock profile store backed by a map
func NewMockProfileStore() *MockProfileStore {
	m := &MockProfileStore{
		profiles:   make(map[string]*storage.Profile),
		CallCounts: make(map[string]int),
	}

	// Set default implementations
	m.GetProfileFunc = func(_ context.Context, subject string) (*storage.Profile, error) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		p, ok := m.profiles[subject]
		if !ok {
			return nil, fmt.Errorf("%w: %s", storage.ErrProfileNotFound, subject)
		}
		return p.Clone(), nil
	}

	m.SaveProfileFunc = func(_ context.Context, profile *storage.Profile) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.profiles[profile.Subject] = profile.Clone()
		return nil
	}

	m.DeleteProfileFunc = func(_ context.Context, subject string) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.profiles, subject)
		return nil
	}

	return m
}

func (m *MockProfileStore) count(method string) {
	m.mu.Lock()
	m.CallCounts[method]++
	m.mu.Unlock()
}

// GetProfile retrieves a profile
func (m *MockProfileStore) GetProfile(ctx context.Context, subject string) (*storage.Profile, error) {
	m.count("GetProfile")
	return m.GetProfileFunc(ctx, subject)
}

// SaveProfile saves a profile
func (m *MockProfileStore) SaveProfile(ctx context.Context, profile *storage.Profile) error {
	m.count("SaveProfile")
	return m.SaveProfileFunc(ctx, profile)
}

// DeleteProfile removes a profile
func (m *MockProfileStore) DeleteProfile(ctx context.Context, subject string) error {
	m.count("DeleteProfile")
	return m.DeleteProfileFunc(ctx, subject)
}

// GetCallCount returns the number of times a method was called
func (m *MockProfileStore) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}
