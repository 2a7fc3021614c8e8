package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"github.com/authlete/authlete-go-samples/instrumentation"
	"github.com/authlete/authlete-go-samples/storage"
)

const (
	// DefaultKeyPrefix is the default prefix for all profile keys
	DefaultKeyPrefix = "authlete:profile:"

	// connectionVerifyTimeout is the timeout for initial connection verification
	connectionVerifyTimeout = 5 * time.Second

	// MaxProfileDataSize is the maximum size of a serialized profile (64KB)
	MaxProfileDataSize = 64 * 1024

	// storageType identifies this backend in spans.
	storageType = "redis"
)

var errProfileTooLarge = errors.New("profile exceeds maximum allowed size")

// Config holds configuration for the Redis storage backend.
type Config struct {
	// KeyPrefix is the prefix for all keys (default "authlete:profile:")
	KeyPrefix string

	// TTL expires stored profiles. Zero keeps them forever.
	TTL time.Duration

	// Logger is the optional structured logger (default: slog.Default())
	Logger *slog.Logger
}

// Store is a Redis-backed implementation of storage.ProfileStore.
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	instrumentation *instrumentation.Instrumentation
	tracer          trace.Tracer
}

// Compile-time interface check
var _ storage.ProfileStore = (*Store)(nil)

// NewFromURL parses a redis:// or rediss:// URL, connects and verifies the
// connection with PING.
func NewFromURL(ctx context.Context, rawURL string, cfg Config) (*Store, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectionVerifyTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	s := NewWithClient(client, cfg)
	s.logger.Info("Connected to Redis profile storage",
		"address", opts.Addr,
		"db", opts.DB,
		"prefix", s.prefix)

	return s, nil
}

// NewWithClient creates a Store around a pre-configured client.
func NewWithClient(client goredis.UniversalClient, cfg Config) *Store {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		client: client,
		prefix: prefix,
		ttl:    cfg.TTL,
		logger: logger,
	}
}

// Close closes the Redis client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks Redis connectivity (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SetInstrumentation sets OpenTelemetry instrumentation for the store
func (s *Store) SetInstrumentation(inst *instrumentation.Instrumentation) {
	s.instrumentation = inst
	if inst != nil {
		s.tracer = inst.Tracer("storage")
	}
}

func (s *Store) profileKey(subject string) string {
	return s.prefix + subject
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

	if err = storage.ValidateSubject(subject); err != nil {
		return nil, err
	}

	var data []byte
	data, err = s.client.Get(ctx, s.profileKey(subject)).Bytes()
	if errors.Is(err, goredis.Nil) {
		err = fmt.Errorf("%w: %s", storage.ErrProfileNotFound, subject)
		return nil, err
	}
	if err != nil {
		err = fmt.Errorf("failed to get profile: %w", err)
		return nil, err
	}

	var profile storage.Profile
	if err = json.Unmarshal(data, &profile); err != nil {
		err = fmt.Errorf("failed to unmarshal profile: %w", err)
		return nil, err
	}

	return &profile, nil
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

	var data []byte
	data, err = json.Marshal(stored)
	if err != nil {
		err = fmt.Errorf("failed to marshal profile: %w", err)
		return err
	}
	if len(data) > MaxProfileDataSize {
		err = errProfileTooLarge
		return err
	}

	if err = s.client.Set(ctx, s.profileKey(stored.Subject), data, s.ttl).Err(); err != nil {
		err = fmt.Errorf("failed to save profile: %w", err)
		return err
	}

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

	var deleted int64
	deleted, err = s.client.Del(ctx, s.profileKey(subject)).Result()
	if err != nil {
		err = fmt.Errorf("failed to delete profile: %w", err)
		return err
	}
	if deleted == 0 {
		err = fmt.Errorf("%w: %s", storage.ErrProfileNotFound, subject)
		return err
	}

	return nil
}

// Seed stores the given profiles, replacing existing ones with the same subject.
func (s *Store) Seed(ctx context.Context, profiles []*storage.Profile) error {
	for _, p := range profiles {
		if err := s.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("seed profile: %w", err)
		}
	}
	return nil
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

	result := "success"
	if err != nil {
		result = "error"
		instrumentation.RecordError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	s.instrumentation.Metrics().RecordStorageOperation(ctx, operation, result, float64(time.Since(startTime).Milliseconds()))
}
