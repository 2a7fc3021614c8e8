package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/authlete/authlete-go-samples/instrumentation"
	"github.com/authlete/authlete-go-samples/storage"
)

// storageType identifies this backend in spans.
const storageType = "memory"

// Store is an in-memory implementation of storage.ProfileStore.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*storage.Profile

	// Instrumentation
	instrumentation *instrumentation.Instrumentation
	tracer          trace.Tracer

	// profilesCountAtomic allows lock-free reads from metric callbacks
	profilesCountAtomic atomic.Int64

	logger *slog.Logger
}

// Compile-time interface check
var _ storage.ProfileStore = (*Store)(nil)

// New creates a new empty in-memory store.
func New() *Store {
	return &Store{
		profiles: make(map[string]*storage.Profile),
		logger:   slog.Default(),
	}
}

// SetLogger sets a custom logger
func (s *Store) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetInstrumentation sets OpenTelemetry instrumentation for the store
func (s *Store) SetInstrumentation(inst *instrumentation.Instrumentation) {
	s.mu.Lock()
	s.instrumentation = inst
	if inst != nil {
		s.tracer = inst.Tracer("storage")
	}
	s.profilesCountAtomic.Store(int64(len(s.profiles)))
	s.mu.Unlock()

	if inst != nil {
		err := inst.RegisterStorageSizeCallback(func() int64 {
			return s.profilesCountAtomic.Load()
		})
		if err != nil {
			s.logger.Warn("Failed to register storage size callback", "error", err)
		}
	}
}

// Seed stores the given profiles, replacing existing ones with the same subject.
func (s *Store) Seed(profiles []*storage.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range profiles {
		if p == nil || storage.ValidateSubject(p.Subject) != nil {
			continue
		}
		s.profiles[p.Subject] = p.Clone()
	}
	s.profilesCountAtomic.Store(int64(len(s.profiles)))
}

// GetProfile retrieves the profile of a subject
func (s *Store) GetProfile(ctx context.Context, subject string) (*storage.Profile, error) {
	ctx, span := s.startStorageSpan(ctx, "get_profile")
	defer span.End()

	startTime := time.Now()
	var err error

	defer func() {
		s.recordStorageOperation(ctx, span, "get_profile", err, startTime)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[subject]
	if !ok {
		err = fmt.Errorf("%w: %s", storage.ErrProfileNotFound, subject)
		return nil, err
	}

	return profile.Clone(), nil
}

// SaveProfile stores a profile under its subject
func (s *Store) SaveProfile(ctx context.Context, profile *storage.Profile) error {
	ctx, span := s.startStorageSpan(ctx, "save_profile")
	defer span.End()

	startTime := time.Now()
	var err error

	defer func() {
		s.recordStorageOperation(ctx, span, "save_profile", err, startTime)
	}()

	if profile == nil {
		err = fmt.Errorf("profile cannot be nil")
		return err
	}
	if err = storage.ValidateSubject(profile.Subject); err != nil {
		return err
	}

	stored := profile.Clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[stored.Subject] = stored
	s.profilesCountAtomic.Store(int64(len(s.profiles)))

	s.logger.Debug("Saved profile", "subject_length", len(stored.Subject))
	return nil
}

// DeleteProfile removes the profile of a subject
func (s *Store) DeleteProfile(ctx context.Context, subject string) error {
	ctx, span := s.startStorageSpan(ctx, "delete_profile")
	defer span.End()

	startTime := time.Now()
	var err error

	defer func() {
		s.recordStorageOperation(ctx, span, "delete_profile", err, startTime)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[subject]; !ok {
		err = fmt.Errorf("%w: %s", storage.ErrProfileNotFound, subject)
		return err
	}
	delete(s.profiles, subject)
	s.profilesCountAtomic.Store(int64(len(s.profiles)))

	return nil
}

// Count returns the number of stored profiles
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// startStorageSpan starts a span for a storage operation
func (s *Store) startStorageSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := s.tracer.Start(ctx, "storage."+operation)
	instrumentation.AddStorageAttributes(span, operation, storageType)
	return ctx, span
}

// recordStorageOperation records metrics for a storage operation and sets span status
func (s *Store) recordStorageOperation(ctx context.Context, span trace.Span, operation string, err error, startTime time.Time) {
	if s.instrumentation == nil {
		return
	}

	durationMs := float64(time.Since(startTime).Milliseconds())
	result := "success"
	if err != nil {
		result = "error"
		instrumentation.RecordError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	s.instrumentation.Metrics().RecordStorageOperation(ctx, operation, result, durationMs)
}
