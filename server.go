package samples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/authlete/authlete-go-samples/authlete"
	"github.com/authlete/authlete-go-samples/instrumentation"
	"github.com/authlete/authlete-go-samples/providers"
	"github.com/authlete/authlete-go-samples/security"
)

// Server holds the logic of both sample servers and the collaborators it
// depends on. Fields other than Config and Local are optional.
type Server struct {
	Config *Config

	// Local answers claims from the service's own profile store
	Local providers.ClaimProvider

	// Social answers claims for social logins, keyed by the callback's sns value
	Social map[string]providers.ClaimProvider

	// Introspector validates access tokens for the resource server
	Introspector authlete.Introspector

	RateLimiter     *security.RateLimiter
	Auditor         *security.Auditor
	Instrumentation *instrumentation.Instrumentation
	Logger          *slog.Logger
}

// NewServer creates a server with the given configuration and local claim provider.
func NewServer(cfg *Config, local providers.ClaimProvider, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if local == nil {
		return nil, fmt.Errorf("local claim provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		Config: cfg,
		Local:  local,
		Social: make(map[string]providers.ClaimProvider),
		Logger: logger,
	}, nil
}

// ValidateAPICredentials reports whether key and secret are the credentials
// configured for the authentication callback endpoint.
func (s *Server) ValidateAPICredentials(key, secret string) bool {
	// evaluate both to keep timing independent of which one is wrong
	keyOK := security.CompareSecret(key, s.Config.Callback.APIKey)
	secretOK := security.CompareSecret(secret, s.Config.Callback.APISecret)
	return keyOK && secretOK
}

// Authenticate answers an authentication callback request. The end-user is
// authenticated when id is non-empty and equal to password; the subject is
// the id. Requested claims come from the social provider named by sns when
// the request carries an access token, otherwise from the local provider.
// A failing provider is logged and leaves claims absent.
func (s *Server) Authenticate(ctx context.Context, req *authlete.AuthenticationCallbackRequest, clientIP string) *authlete.AuthenticationCallbackResponse {
	ctx, span := s.tracer("server").Start(ctx, "authentication.authenticate")
	defer span.End()

	source := s.claimSource(req)
	clientID := clientIDString(req.ClientID)
	instrumentation.AddAuthenticationAttributes(span, clientID, req.SNS, len(req.Claims))

	res := &authlete.AuthenticationCallbackResponse{}

	if req.ID == "" || req.ID != req.Password {
		s.recordAuthentication(ctx, source.Name(), false)
		s.Auditor.LogAuthFailure(req.ID, clientID, clientIP, "invalid credentials")
		instrumentation.SetSpanAttributes(span, attribute.Bool(instrumentation.AttrAuthenticated, false))
		instrumentation.SetSpanSuccess(span)
		return res
	}

	subject := req.ID
	res.Authenticated = true
	res.Subject = &subject

	s.recordAuthentication(ctx, source.Name(), true)
	s.Auditor.LogAuthentication(subject, clientID, clientIP, source.Name())
	instrumentation.SetSpanAttributes(span, attribute.Bool(instrumentation.AttrAuthenticated, true))

	if len(req.Claims) > 0 {
		res.Claims = s.collectClaims(ctx, source, providers.ClaimRequest{
			Claims:      req.Claims,
			Locales:     req.ClaimsLocales,
			Subject:     subject,
			AccessToken: req.AccessToken,
		})
	}

	instrumentation.SetSpanSuccess(span)
	return res
}

// claimSource picks the provider for a callback request.
func (s *Server) claimSource(req *authlete.AuthenticationCallbackRequest) providers.ClaimProvider {
	if req.SNS != "" && req.AccessToken != "" {
		if p, ok := s.Social[strings.ToUpper(req.SNS)]; ok {
			return p
		}
		s.Logger.Warn("No claim provider for social network, using local profiles", "sns", req.SNS)
	}
	return s.Local
}

// collectClaims runs the provider and serializes its result. Any failure
// degrades to absent claims.
func (s *Server) collectClaims(ctx context.Context, p providers.ClaimProvider, req providers.ClaimRequest) *string {
	ctx, span := s.tracer("provider").Start(ctx, "provider.collect_claims")
	defer span.End()
	instrumentation.AddProviderAttributes(span, p.Name(), "collect_claims")

	start := time.Now()
	values, err := p.CollectClaims(ctx, req)
	s.recordProviderCall(ctx, p.Name(), start, err)

	if err != nil {
		s.Logger.Warn("Failed to collect claims, continuing without claims",
			"provider", p.Name(),
			"error", err)
		s.Auditor.LogProviderFailure(req.Subject, p.Name(), providerErrorType(err))
		instrumentation.RecordError(span, err)
		instrumentation.SetSpanAttributes(span, attribute.String(instrumentation.AttrProviderErrorType, providerErrorType(err)))
		return nil
	}

	claimsJSON, err := values.JSON()
	if err != nil {
		s.Logger.Error("Failed to encode claims", "provider", p.Name(), "error", err)
		instrumentation.RecordError(span, err)
		return nil
	}

	if s.Instrumentation != nil {
		s.Instrumentation.Metrics().RecordClaimsCollected(ctx, p.Name(), len(values))
	}
	instrumentation.SetSpanAttributes(span, attribute.Int(instrumentation.AttrClaimsReturned, len(values)))
	instrumentation.SetSpanSuccess(span)
	return claimsJSON
}

// Introspect protects a resource request: the bearer token of r must cover
// scopes. The returned response is never nil; its action decides whether
// the request may proceed.
func (s *Server) Introspect(ctx context.Context, r *http.Request, scopes []string) *authlete.IntrospectionResponse {
	ctx, span := s.tracer("authlete").Start(ctx, "authlete.introspect")
	defer span.End()

	in := s.Introspector
	if in == nil {
		in = missingIntrospector{}
	}

	start := time.Now()
	res, err := authlete.ProtectResource(ctx, in, r, scopes, "")
	if err != nil {
		s.Logger.Error("Introspection API call failed", "error", err)
		instrumentation.RecordError(span, err)
	}

	instrumentation.AddIntrospectionAttributes(span, string(res.Action), scopes)
	if s.Instrumentation != nil {
		s.Instrumentation.Metrics().RecordIntrospection(ctx, string(res.Action), float64(time.Since(start).Milliseconds()))
	}
	if err == nil {
		instrumentation.SetSpanSuccess(span)
	}
	return res
}

// HealthCheck checks every configured claim provider.
func (s *Server) HealthCheck(ctx context.Context) map[string]error {
	results := map[string]error{s.Local.Name(): s.Local.HealthCheck(ctx)}
	for _, p := range s.Social {
		results[p.Name()] = p.HealthCheck(ctx)
	}
	return results
}

var errNoIntrospector = errors.New("no introspector configured")

type missingIntrospector struct{}

func (missingIntrospector) Introspect(context.Context, *authlete.IntrospectionRequest) (*authlete.IntrospectionResponse, error) {
	return nil, errNoIntrospector
}

var noopTracer = tracenoop.NewTracerProvider().Tracer("")

func (s *Server) tracer(scope string) trace.Tracer {
	if s.Instrumentation == nil {
		return noopTracer
	}
	return s.Instrumentation.Tracer(scope)
}

func (s *Server) recordAuthentication(ctx context.Context, source string, authenticated bool) {
	if s.Instrumentation == nil {
		return
	}
	s.Instrumentation.Metrics().RecordAuthentication(ctx, source, authenticated)
}

func (s *Server) recordProviderCall(ctx context.Context, provider string, start time.Time, err error) {
	if s.Instrumentation == nil {
		return
	}
	errorType := ""
	if err != nil {
		errorType = providerErrorType(err)
	}
	s.Instrumentation.Metrics().RecordProviderAPICall(ctx, provider, "collect_claims",
		float64(time.Since(start).Milliseconds()), errorType)
}

// providerErrorType classifies provider errors for metrics and audit.
func providerErrorType(err error) string {
	switch {
	case errors.Is(err, providers.ErrProviderUnavailable):
		return "unavailable"
	case errors.Is(err, providers.ErrUnexpectedStatus):
		return "unexpected_status"
	case errors.Is(err, providers.ErrMalformedProfile):
		return "malformed_profile"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "unknown"
	}
}

func clientIDString(id int64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("%d", id)
}
