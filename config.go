package samples

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/authlete/authlete-go-samples/authlete"
)

// Config holds the configuration of both sample servers. It is read once at
// startup and not modified afterwards.
type Config struct {
	// Authlete API access used by the resource server
	Authlete AuthleteConfig

	// Credentials Authlete presents to the authentication callback endpoint
	Callback CallbackConfig

	// Facebook Graph API access for social claims
	Facebook FacebookConfig

	// Rate limiting per client IP
	RateLimit RateLimitConfig

	// AuthenticationAddr is the listen address of the authentication server
	AuthenticationAddr string `env:"AUTHENTICATION_ADDR" envDefault:":4567"`

	// ResourceAddr is the listen address of the resource server
	ResourceAddr string `env:"RESOURCE_ADDR" envDefault:":4568"`

	// RedisURL selects the redis profile store. Empty uses memory.
	RedisURL string `env:"REDIS_URL"`

	// MetricsEnabled exposes /metrics and records OpenTelemetry metrics
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"false"`

	// LogClientIPs adds client IP addresses to HTTP spans.
	LogClientIPs bool `env:"LOG_CLIENT_IPS" envDefault:"false"`

	// AuditLogging enables security audit events (subjects hashed)
	AuditLogging bool `env:"AUDIT_LOGGING" envDefault:"true"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is text or json
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// AuthleteConfig holds the Authlete service credentials.
type AuthleteConfig struct {
	Host             string `env:"AUTHLETE_HOST" envDefault:"https://evaluation-dog.authlete.net"`
	ServiceAPIKey    string `env:"SERVICE_API_KEY"`
	ServiceAPISecret string `env:"SERVICE_API_SECRET"`
}

// CallbackConfig holds the API credentials of the authentication callback
// endpoint. APISecret may be a bcrypt hash.
type CallbackConfig struct {
	APIKey    string `env:"AUTHENTICATION_API_KEY" envDefault:"authentication-api-key"`
	APISecret string `env:"AUTHENTICATION_API_SECRET" envDefault:"authentication-api-secret"`
}

// FacebookConfig holds Facebook settings. Only GraphURL is needed to
// collect claims; the client fields enable the login leg.
type FacebookConfig struct {
	GraphURL     string `env:"FACEBOOK_GRAPH_URL"`
	ClientID     string `env:"FACEBOOK_CLIENT_ID"`
	ClientSecret string `env:"FACEBOOK_CLIENT_SECRET"`
	RedirectURL  string `env:"FACEBOOK_REDIRECT_URL"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerSecond per client IP. Zero disables limiting.
	RequestsPerSecond int `env:"RATE_LIMIT_RPS" envDefault:"0"`

	// Burst per client IP. Zero means RequestsPerSecond.
	Burst int `env:"RATE_LIMIT_BURST" envDefault:"0"`

	// TrustProxy enables X-Forwarded-For and X-Real-IP.
	// Only enable behind a trusted reverse proxy.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	// TrustedProxyCount is the number of proxies in front of the server
	TrustedProxyCount int `env:"TRUSTED_PROXY_COUNT" envDefault:"1"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (*Config, error) {
	return parseConfig(env.Options{})
}

// LoadConfigFrom reads the configuration from the given variables only.
func LoadConfigFrom(environment map[string]string) (*Config, error) {
	return parseConfig(env.Options{Environment: environment})
}

func parseConfig(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings shared by both servers.
func (c *Config) Validate() error {
	if err := validateHTTPURL("AUTHLETE_HOST", c.Authlete.Host); err != nil {
		return err
	}
	if c.Facebook.GraphURL != "" {
		if err := validateHTTPURL("FACEBOOK_GRAPH_URL", c.Facebook.GraphURL); err != nil {
			return err
		}
	}
	if c.Callback.APIKey == "" || c.Callback.APISecret == "" {
		return fmt.Errorf("AUTHENTICATION_API_KEY and AUTHENTICATION_API_SECRET must not be empty")
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat)
	}
	return nil
}

// ValidateResourceServer checks the settings the resource server needs on
// top of Validate.
func (c *Config) ValidateResourceServer() error {
	if c.Authlete.ServiceAPIKey == "" || c.Authlete.ServiceAPISecret == "" {
		return fmt.Errorf("SERVICE_API_KEY and SERVICE_API_SECRET are required by the resource server")
	}
	return nil
}

// AuthleteClientConfig returns the client configuration for the Authlete API.
func (c *Config) AuthleteClientConfig() authlete.Config {
	return authlete.Config{
		Host:             c.Authlete.Host,
		ServiceAPIKey:    c.Authlete.ServiceAPIKey,
		ServiceAPISecret: c.Authlete.ServiceAPISecret,
	}
}

// ParseLogLevel maps a LOG_LEVEL value to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return l, nil
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", name, raw)
	}
	return nil
}
