package authlete

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHost is the Authlete evaluation server.
const DefaultHost = "https://evaluation-dog.authlete.net"

const (
	introspectionPath = "/api/auth/introspection"

	// maxResponseSize bounds Authlete API response bodies (64KB)
	maxResponseSize = 64 * 1024

	defaultRequestTimeout = 30 * time.Second
)

// ErrAPICall is wrapped by every error returned when an Authlete API call
// does not produce a usable response.
var ErrAPICall = errors.New("authlete api call failed")

// APIError is returned when Authlete answers with a non-2xx status.
type APIError struct {
	StatusCode    int
	ResultCode    string
	ResultMessage string
}

func (e *APIError) Error() string {
	if e.ResultMessage != "" {
		return fmt.Sprintf("authlete api returned status %d: %s", e.StatusCode, e.ResultMessage)
	}
	return fmt.Sprintf("authlete api returned status %d", e.StatusCode)
}

// Unwrap lets errors.Is match ErrAPICall.
func (e *APIError) Unwrap() error {
	return ErrAPICall
}

// Config holds Authlete client configuration.
type Config struct {
	// Host is the base URL of the Authlete API (default: DefaultHost).
	Host string

	// ServiceAPIKey is the API key of the Authlete service.
	ServiceAPIKey string

	// ServiceAPISecret is the API secret of the Authlete service.
	ServiceAPISecret string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// RequestTimeout is the timeout for API calls (default: 30s).
	RequestTimeout time.Duration
}

// Client calls the Authlete API on behalf of one service.
type Client struct {
	baseURL        string
	apiKey         string
	apiSecret      string
	httpClient     *http.Client
	requestTimeout time.Duration
}

// NewClient creates a new Authlete API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ServiceAPIKey == "" {
		return nil, fmt.Errorf("service API key is required")
	}
	if cfg.ServiceAPISecret == "" {
		return nil, fmt.Errorf("service API secret is required")
	}

	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	u, err := url.Parse(host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid authlete host %q", host)
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		baseURL:        strings.TrimRight(host, "/"),
		apiKey:         cfg.ServiceAPIKey,
		apiSecret:      cfg.ServiceAPISecret,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
	}, nil
}

// Introspect calls the introspection API. The returned response carries the
// action the resource server must take; err is non-nil only when no such
// response could be obtained.
func (c *Client) Introspect(ctx context.Context, req *IntrospectionRequest) (*IntrospectionResponse, error) {
	var res IntrospectionResponse
	if err := c.callPost(ctx, introspectionPath, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) callPost(ctx context.Context, path string, in, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPICall, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrAPICall, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var result struct {
			ResultCode    string `json:"resultCode"`
			ResultMessage string `json:"resultMessage"`
		}
		if json.Unmarshal(data, &result) == nil {
			apiErr.ResultCode = result.ResultCode
			apiErr.ResultMessage = result.ResultMessage
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrAPICall, err)
	}
	return nil
}
