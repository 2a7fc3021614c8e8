package samples

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"AUTHLETE_HOST", cfg.Authlete.Host, "https://evaluation-dog.authlete.net"},
		{"AUTHENTICATION_API_KEY", cfg.Callback.APIKey, "authentication-api-key"},
		{"AUTHENTICATION_API_SECRET", cfg.Callback.APISecret, "authentication-api-secret"},
		{"AUTHENTICATION_ADDR", cfg.AuthenticationAddr, ":4567"},
		{"RESOURCE_ADDR", cfg.ResourceAddr, ":4568"},
		{"RATE_LIMIT_RPS", cfg.RateLimit.RequestsPerSecond, 0},
		{"TRUSTED_PROXY_COUNT", cfg.RateLimit.TrustedProxyCount, 1},
		{"AUDIT_LOGGING", cfg.AuditLogging, true},
		{"METRICS_ENABLED", cfg.MetricsEnabled, false},
		{"LOG_LEVEL", cfg.LogLevel, "info"},
		{"LOG_FORMAT", cfg.LogFormat, "text"},
		{"REDIS_URL", cfg.RedisURL, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadConfigFrom_Overrides(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{
		"AUTHLETE_HOST":      "http://localhost:8080",
		"SERVICE_API_KEY":    "svc-key",
		"SERVICE_API_SECRET": "svc-secret",
		"FACEBOOK_GRAPH_URL": "http://localhost:9000/me",
		"RATE_LIMIT_RPS":     "5",
		"RATE_LIMIT_BURST":   "10",
		"TRUST_PROXY":        "true",
		"LOG_LEVEL":          "DEBUG",
		"LOG_FORMAT":         "json",
	})
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}

	if cfg.Authlete.Host != "http://localhost:8080" || cfg.Authlete.ServiceAPIKey != "svc-key" {
		t.Errorf("Authlete = %+v", cfg.Authlete)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != 10 || !cfg.RateLimit.TrustProxy {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if err := cfg.ValidateResourceServer(); err != nil {
		t.Errorf("ValidateResourceServer() error = %v", err)
	}

	client := cfg.AuthleteClientConfig()
	if client.ServiceAPISecret != "svc-secret" || client.Host != "http://localhost:8080" {
		t.Errorf("AuthleteClientConfig() = %+v", client)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "host scheme", env: map[string]string{"AUTHLETE_HOST": "ftp://example.com"}, wantErr: "AUTHLETE_HOST"},
		{name: "host missing", env: map[string]string{"AUTHLETE_HOST": "https://"}, wantErr: "AUTHLETE_HOST"},
		{name: "graph url", env: map[string]string{"FACEBOOK_GRAPH_URL": "graph.facebook.com"}, wantErr: "FACEBOOK_GRAPH_URL"},
		{name: "negative rate", env: map[string]string{"RATE_LIMIT_RPS": "-1"}, wantErr: "rate limit"},
		{name: "log level", env: map[string]string{"LOG_LEVEL": "verbose"}, wantErr: "LOG_LEVEL"},
		{name: "log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "LOG_FORMAT"},
		{name: "not a number", env: map[string]string{"RATE_LIMIT_RPS": "many"}, wantErr: "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFrom(tt.env)
			if err == nil {
				t.Fatal("LoadConfigFrom() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateResourceServer(t *testing.T) {
	cfg := testConfig(t)
	if err := cfg.ValidateResourceServer(); err == nil {
		t.Error("resource server without service credentials should fail validation")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
