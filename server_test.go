package samples

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/authlete/authlete-go-samples/authlete"
	"github.com/authlete/authlete-go-samples/claims"
	"github.com/authlete/authlete-go-samples/providers"
	"github.com/authlete/authlete-go-samples/providers/mock"
	"github.com/authlete/authlete-go-samples/security"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfigFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	return cfg
}

func newTestServer(t *testing.T) (*Server, *mock.MockProvider) {
	t.Helper()
	local := mock.NewMockProvider()
	srv, err := NewServer(testConfig(t), local, nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv, local
}

func strPtr(s string) *string { return &s }

func TestNewServer(t *testing.T) {
	if _, err := NewServer(nil, mock.NewMockProvider(), nil); err == nil {
		t.Error("NewServer() with nil config should fail")
	}
	if _, err := NewServer(testConfig(t), nil, nil); err == nil {
		t.Error("NewServer() with nil provider should fail")
	}
	srv, err := NewServer(testConfig(t), mock.NewMockProvider(), nil)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.Logger == nil || srv.Social == nil {
		t.Error("NewServer() should set logger and social map")
	}
}

func TestServer_Authenticate(t *testing.T) {
	tests := []struct {
		name      string
		req       authlete.AuthenticationCallbackRequest
		want      *authlete.AuthenticationCallbackResponse
		wantCalls int
	}{
		{
			name: "matching id and password",
			req:  authlete.AuthenticationCallbackRequest{ID: "alice", Password: "alice"},
			want: &authlete.AuthenticationCallbackResponse{Authenticated: true, Subject: strPtr("alice")},
		},
		{
			name: "different password",
			req:  authlete.AuthenticationCallbackRequest{ID: "alice", Password: "bob"},
			want: &authlete.AuthenticationCallbackResponse{Authenticated: false},
		},
		{
			name: "empty id",
			req:  authlete.AuthenticationCallbackRequest{},
			want: &authlete.AuthenticationCallbackResponse{Authenticated: false},
		},
		{
			name: "claims requested",
			req: authlete.AuthenticationCallbackRequest{
				ID: "alice", Password: "alice",
				Claims: []string{"given_name#ja", "email"},
			},
			want: &authlete.AuthenticationCallbackResponse{
				Authenticated: true,
				Subject:       strPtr("alice"),
				Claims:        strPtr(`{"given_name":"alice"}`),
			},
			wantCalls: 1,
		},
		{
			name: "no supported claim requested",
			req: authlete.AuthenticationCallbackRequest{
				ID: "alice", Password: "alice",
				Claims: []string{"phone_number"},
			},
			want:      &authlete.AuthenticationCallbackResponse{Authenticated: true, Subject: strPtr("alice")},
			wantCalls: 1,
		},
		{
			name: "failed authentication never collects claims",
			req: authlete.AuthenticationCallbackRequest{
				ID: "alice", Password: "bob",
				Claims: []string{"given_name"},
			},
			want: &authlete.AuthenticationCallbackResponse{Authenticated: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, local := newTestServer(t)
			local.CollectClaimsFunc = func(ctx context.Context, req providers.ClaimRequest) (claims.Values, error) {
				for _, c := range req.Claims {
					if c == "given_name#ja" || c == "given_name" {
						return claims.Values{"given_name": req.Subject}, nil
					}
				}
				return nil, nil
			}

			got := srv.Authenticate(context.Background(), &tt.req, "192.0.2.1")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Authenticate() mismatch (-want +got):\n%s", diff)
			}
			if calls := local.GetCallCount("CollectClaims"); calls != tt.wantCalls {
				t.Errorf("CollectClaims calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestServer_AuthenticateClaimSource(t *testing.T) {
	tests := []struct {
		name        string
		sns         string
		accessToken string
		wantSocial  bool
	}{
		{name: "facebook with token", sns: "FACEBOOK", accessToken: "fb-token", wantSocial: true},
		{name: "sns is case-insensitive", sns: "facebook", accessToken: "fb-token", wantSocial: true},
		{name: "facebook without token", sns: "FACEBOOK", wantSocial: false},
		{name: "unknown network", sns: "TWITTER", accessToken: "tw-token", wantSocial: false},
		{name: "no sns", wantSocial: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, local := newTestServer(t)
			social := mock.NewMockProvider()
			social.NameFunc = func() string { return "facebook" }
			srv.Social[authlete.SNSFacebook] = social

			srv.Authenticate(context.Background(), &authlete.AuthenticationCallbackRequest{
				ID: "alice", Password: "alice",
				Claims:      []string{"given_name"},
				SNS:         tt.sns,
				AccessToken: tt.accessToken,
			}, "")

			socialCalls := social.GetCallCount("CollectClaims")
			localCalls := local.GetCallCount("CollectClaims")
			if tt.wantSocial && (socialCalls != 1 || localCalls != 0) {
				t.Errorf("social calls = %d, local calls = %d; want social only", socialCalls, localCalls)
			}
			if !tt.wantSocial && (socialCalls != 0 || localCalls != 1) {
				t.Errorf("social calls = %d, local calls = %d; want local only", socialCalls, localCalls)
			}
			if tt.wantSocial && social.GetLastRequest().AccessToken != tt.accessToken {
				t.Errorf("access token not forwarded: %+v", social.GetLastRequest())
			}
		})
	}
}

func TestServer_AuthenticateProviderFailure(t *testing.T) {
	srv, local := newTestServer(t)
	local.CollectClaimsFunc = func(ctx context.Context, req providers.ClaimRequest) (claims.Values, error) {
		return nil, fmt.Errorf("%w: connection refused", providers.ErrProviderUnavailable)
	}

	got := srv.Authenticate(context.Background(), &authlete.AuthenticationCallbackRequest{
		ID: "alice", Password: "alice", Claims: []string{"given_name"},
	}, "")

	want := &authlete.AuthenticationCallbackResponse{Authenticated: true, Subject: strPtr("alice")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Authenticate() mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_ValidateAPICredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		key, secret string
		want        bool
	}{
		{"authentication-api-key", "authentication-api-secret", true},
		{"authentication-api-key", "wrong", false},
		{"wrong", "authentication-api-secret", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.secret, func(t *testing.T) {
			if got := srv.ValidateAPICredentials(tt.key, tt.secret); got != tt.want {
				t.Errorf("ValidateAPICredentials() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServer_ValidateAPICredentialsBcrypt(t *testing.T) {
	hash, err := security.HashSecret("authentication-api-secret")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}

	srv, _ := newTestServer(t)
	srv.Config.Callback.APISecret = hash

	if !srv.ValidateAPICredentials("authentication-api-key", "authentication-api-secret") {
		t.Error("plain secret should match its configured bcrypt hash")
	}
	if srv.ValidateAPICredentials("authentication-api-key", hash) {
		t.Error("the hash itself must not be accepted as the secret")
	}
}

func TestServer_IntrospectWithoutIntrospector(t *testing.T) {
	srv, _ := newTestServer(t)

	r := httptest.NewRequest("GET", "/me", nil)
	r.Header.Set("Authorization", "Bearer tok")

	res := srv.Introspect(context.Background(), r, []string{ScopeProfile})
	if res.Action != authlete.ActionInternalServerError {
		t.Errorf("Action = %s, want INTERNAL_SERVER_ERROR", res.Action)
	}
}

func TestServer_HealthCheck(t *testing.T) {
	srv, local := newTestServer(t)
	social := mock.NewMockProvider()
	social.NameFunc = func() string { return "facebook" }
	social.HealthCheckFunc = func(ctx context.Context) error { return errors.New("graph api down") }
	srv.Social[authlete.SNSFacebook] = social

	results := srv.HealthCheck(context.Background())
	if err := results[local.Name()]; err != nil {
		t.Errorf("local health = %v, want nil", err)
	}
	if err := results["facebook"]; err == nil {
		t.Error("facebook health should report the failure")
	}
}

func TestProviderErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", providers.ErrProviderUnavailable), "unavailable"},
		{fmt.Errorf("x: %w", providers.ErrUnexpectedStatus), "unexpected_status"},
		{fmt.Errorf("x: %w", providers.ErrMalformedProfile), "malformed_profile"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		if got := providerErrorType(tt.err); got != tt.want {
			t.Errorf("providerErrorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
