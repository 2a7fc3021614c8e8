package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthfacebook "golang.org/x/oauth2/facebook"

	"github.com/authlete/authlete-go-samples/claims"
	"github.com/authlete/authlete-go-samples/providers"
)

// Compile-time check that Provider implements the providers.ClaimProvider interface.
var _ providers.ClaimProvider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "facebook"

// DefaultGraphURL is the Graph API "me" endpoint used for profile lookups.
const DefaultGraphURL = "https://graph.facebook.com/v2.2/me"

// maxProfileSize bounds the Graph API response body.
const maxProfileSize = 1 << 20

// ErrLoginNotConfigured is returned by the login helpers when no client
// credentials were configured.
var ErrLoginNotConfigured = errors.New("facebook login is not configured")

// Mapping translates OpenID Connect claims into Graph API profile fields.
var Mapping = claims.Mapping{
	Fields: map[string]string{
		claims.ClaimName:       "name",
		claims.ClaimGivenName:  "first_name",
		claims.ClaimFamilyName: "last_name",
		claims.ClaimMiddleName: "middle_name",
		claims.ClaimProfile:    "link",
		claims.ClaimWebsite:    "website",
		claims.ClaimEmail:      "email",
		claims.ClaimGender:     "gender",
		claims.ClaimBirthdate:  "birthday",
		claims.ClaimLocale:     "locale",
		claims.ClaimAddress:    "location",
		claims.ClaimUpdatedAt:  "updated_time",
	},
	Formatters: map[string]claims.FormatFunc{
		claims.ClaimBirthdate: claims.FormatBirthdate,
		claims.ClaimLocale:    claims.FormatLocale,
		claims.ClaimAddress:   claims.FormatAddress,
		claims.ClaimUpdatedAt: claims.FormatUpdatedAt,
	},
}

// Provider implements the providers.ClaimProvider interface for Facebook.
type Provider struct {
	oauth          *oauth2.Config
	graphURL       string
	httpClient     *http.Client
	requestTimeout time.Duration
}

// Config holds Facebook configuration.
type Config struct {
	// ClientID is the Facebook app ID. Only needed for the login leg.
	ClientID string

	// ClientSecret is the Facebook app secret. Only needed for the login leg.
	ClientSecret string

	// RedirectURL is the OAuth callback URL of the login leg.
	RedirectURL string

	// Scopes are optional login scopes (defaults to ["public_profile", "email"]).
	Scopes []string

	// GraphURL overrides the Graph API "me" endpoint (default: DefaultGraphURL).
	GraphURL string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// RequestTimeout is the timeout for Graph API calls (default: 30s).
	RequestTimeout time.Duration
}

// NewProvider creates a new Facebook claim provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	graphURL := cfg.GraphURL
	if graphURL == "" {
		graphURL = DefaultGraphURL
	}
	u, err := url.Parse(graphURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid graph URL %q", graphURL)
	}

	if (cfg.ClientID == "") != (cfg.ClientSecret == "") {
		return nil, fmt.Errorf("client ID and client secret must be set together")
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: requestTimeout,
		}
	}

	p := &Provider{
		graphURL:       graphURL,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}

	if cfg.ClientID != "" {
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scopes = []string{"public_profile", "email"}
		}
		scopesCopy := make([]string, len(scopes))
		copy(scopesCopy, scopes)

		p.oauth = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopesCopy,
			Endpoint:     oauthfacebook.Endpoint,
		}
	}

	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// CollectClaims normalizes the requested claims, fetches the matching
// profile fields and formats them. Returns nil values when no requested
// claim is supported or the profile carries none of them.
func (p *Provider) CollectClaims(ctx context.Context, req providers.ClaimRequest) (claims.Values, error) {
	set := Mapping.Normalize(req.Claims)
	if set == nil {
		return nil, nil
	}

	fields, err := p.FetchFields(ctx, req.AccessToken, set)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return Mapping.Format(set, fields), nil
}

// FetchFields performs a single Graph API request for the fields mapped
// from set. The request is not retried.
func (p *Provider) FetchFields(ctx context.Context, accessToken string, set claims.Set) (map[string]any, error) {
	ctx, cancel := providers.EnsureContextTimeout(ctx, p.requestTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("access_token", accessToken)
	query.Set("fields", strings.Join(Mapping.ProviderFields(set), ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// url.Error includes the request URL, which carries the access token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %v", providers.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProfileSize))
		return nil, fmt.Errorf("%w: graph api status %d", providers.ErrUnexpectedStatus, resp.StatusCode)
	}

	var profile map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileSize)).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrMalformedProfile, err)
	}

	return profile, nil
}

// AuthorizationURL generates the Facebook login URL for the given state.
func (p *Provider) AuthorizationURL(state string) (string, error) {
	if p.oauth == nil {
		return "", ErrLoginNotConfigured
	}
	return p.oauth.AuthCodeURL(state), nil
}

// ExchangeCode exchanges a Facebook authorization code for an access token.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.oauth == nil {
		return nil, ErrLoginNotConfigured
	}

	ctx, cancel := providers.EnsureContextTimeout(ctx, p.requestTimeout)
	defer cancel()

	return providers.ExchangeCode(ctx, p.oauth, p.httpClient, code)
}

// HealthCheck verifies that the Graph API is reachable. Any answer below
// 500 counts as healthy since the probe carries no access token.
func (p *Provider) HealthCheck(ctx context.Context) error {
	ctx, cancel := providers.EnsureContextTimeout(ctx, p.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.graphURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", providers.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: facebook health check status %d", providers.ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}
