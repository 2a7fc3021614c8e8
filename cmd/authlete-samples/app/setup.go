package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	samples "github.com/authlete/authlete-go-samples"
	"github.com/authlete/authlete-go-samples/authlete"
	"github.com/authlete/authlete-go-samples/instrumentation"
	"github.com/authlete/authlete-go-samples/providers/facebook"
	"github.com/authlete/authlete-go-samples/providers/local"
	"github.com/authlete/authlete-go-samples/security"
	"github.com/authlete/authlete-go-samples/storage"
	"github.com/authlete/authlete-go-samples/storage/memory"
	redisstore "github.com/authlete/authlete-go-samples/storage/redis"
)

func newLogger(cfg *samples.Config) (*slog.Logger, error) {
	return newLoggerTo(os.Stderr, cfg)
}

func newLoggerTo(w io.Writer, cfg *samples.Config) (*slog.Logger, error) {
	level, err := samples.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// newServer wires a samples.Server from cfg. The returned cleanup releases
// everything that was started.
func newServer(ctx context.Context, cfg *samples.Config, logger *slog.Logger) (*samples.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName:    instrumentation.DefaultServiceName,
		ServiceVersion: Version,
		Enabled:        cfg.MetricsEnabled,
		LogClientIPs:   cfg.LogClientIPs,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create instrumentation: %w", err)
	}
	closers = append(closers, func() {
		if err := inst.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down instrumentation", "error", err)
		}
	})

	store, closeStore, err := newProfileStore(ctx, cfg, logger, inst)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, closeStore)

	localProvider, err := local.NewProvider(store)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	srv, err := samples.NewServer(cfg, localProvider, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	srv.Instrumentation = inst
	srv.Auditor = security.NewAuditor(logger, cfg.AuditLogging)
	srv.Auditor.SetMetrics(inst.Metrics())

	fb, err := facebook.NewProvider(facebookConfig(cfg))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create facebook provider: %w", err)
	}
	srv.Social[authlete.SNSFacebook] = fb

	if cfg.RateLimit.RequestsPerSecond > 0 {
		srv.RateLimiter = security.NewRateLimiter(security.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}, logger)
		closers = append(closers, srv.RateLimiter.Stop)
		logger.Info("Rate limiting enabled",
			"requests_per_second", cfg.RateLimit.RequestsPerSecond,
			"burst", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.TrustProxy {
		logger.Warn("Trusting proxy headers for client IPs; only enable behind a trusted reverse proxy",
			"trusted_proxy_count", cfg.RateLimit.TrustedProxyCount)
	}

	return srv, cleanup, nil
}

func facebookConfig(cfg *samples.Config) *facebook.Config {
	return &facebook.Config{
		ClientID:     cfg.Facebook.ClientID,
		ClientSecret: cfg.Facebook.ClientSecret,
		RedirectURL:  cfg.Facebook.RedirectURL,
		GraphURL:     cfg.Facebook.GraphURL,
	}
}

// newProfileStore returns the redis store when REDIS_URL is set and the
// memory store otherwise, seeded with the demo profiles.
func newProfileStore(ctx context.Context, cfg *samples.Config, logger *slog.Logger, inst *instrumentation.Instrumentation) (storage.ProfileStore, func(), error) {
	if cfg.RedisURL == "" {
		store := memory.New()
		store.SetLogger(logger)
		store.SetInstrumentation(inst)
		store.Seed(memory.DemoProfiles())
		logger.Info("Using in-memory profile storage", "profiles", store.Count())
		return store, func() {}, nil
	}

	store, err := redisstore.NewFromURL(ctx, cfg.RedisURL, redisstore.Config{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	store.SetInstrumentation(inst)
	if err := store.Seed(ctx, memory.DemoProfiles()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to seed profiles: %w", err)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close redis client", "error", err)
		}
	}, nil
}
