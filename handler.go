package samples

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/authlete/authlete-go-samples/authlete"
	"github.com/authlete/authlete-go-samples/instrumentation"
	"github.com/authlete/authlete-go-samples/security"
)

const (
	// AuthenticationRealm is the Basic realm of the authentication callback endpoint
	AuthenticationRealm = "Authentication Callback Endpoint"

	// Scopes required by the resource endpoints
	ScopeProfile = "profile"
	ScopeSaying  = "saying"

	contentTypeJSON = "application/json;charset=UTF-8"

	// maxCallbackBodySize bounds authentication callback request bodies (1MB)
	maxCallbackBodySize = 1 << 20
)

// Handler is the HTTP adapter of Server.
type Handler struct {
	server *Server
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(server *Server, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		server: server,
		logger: logger,
	}
}

// AuthenticationRoutes mounts POST /authentication and GET /healthz.
func (h *Handler) AuthenticationRoutes(r chi.Router) {
	r.Get("/healthz", h.ServeHealth)
	r.Group(func(r chi.Router) {
		r.Use(h.RateLimit, h.RequireAPICredentials)
		r.Post("/authentication", h.ServeAuthentication)
	})
}

// ResourceRoutes mounts GET /me, GET /saying and GET /healthz.
func (h *Handler) ResourceRoutes(r chi.Router) {
	r.Get("/healthz", h.ServeHealth)
	r.Group(func(r chi.Router) {
		r.Use(h.RateLimit)
		r.With(h.ProtectResource(ScopeProfile)).Get("/me", h.ServeMe)
		r.With(h.ProtectResource(ScopeSaying)).Get("/saying", h.ServeSaying)
	})
}

// NewRouter builds a router with the common middleware stack and lets
// mount add the routes. /metrics is served when instrumentation is enabled.
func (h *Handler) NewRouter(mount func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(security.RequestIDMiddleware, middleware.Recoverer, h.instrumentHTTP)
	if h.server.Instrumentation != nil && h.server.Config.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", h.server.Instrumentation.MetricsHandler())
	}
	mount(r)
	return r
}

// RequireAPICredentials rejects requests whose Basic credentials are not
// the configured API key and secret.
func (h *Handler) RequireAPICredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, secret, ok := r.BasicAuth()
		if ok && h.server.ValidateAPICredentials(key, secret) {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := h.clientIP(r)
		h.logger.Warn("Rejected API call with invalid credentials",
			"path", r.URL.Path,
			"has_credentials", ok)
		h.server.Auditor.LogCredentialFailure(clientIP, r.URL.Path)
		if h.server.Instrumentation != nil {
			h.server.Instrumentation.Metrics().RecordCredentialFailure(r.Context(), r.URL.Path)
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="`+AuthenticationRealm+`"`)
		h.writeHTTPError(w, r, ErrInvalidClient("Valid API credentials are required"))
	})
}

// ServeAuthentication handles POST /authentication. Once the body parses,
// the answer is always 200; failed end-user authentication is reported in
// the body.
func (h *Handler) ServeAuthentication(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBodySize)

	var req authlete.AuthenticationCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to parse authentication callback request", "error", err)
		h.writeHTTPError(w, r, ErrInvalidRequest("Malformed authentication callback request"))
		return
	}

	res := h.server.Authenticate(r.Context(), &req, h.clientIP(r))
	h.writeJSON(w, r, http.StatusOK, res)
}

// ProtectResource returns middleware that introspects the request's access
// token against scopes. A non-OK action is answered with Authlete's response
// and nothing else, so headers set by outer middleware are dropped; otherwise
// the introspection result is put in the request context.
func (h *Handler) ProtectResource(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := h.server.Introspect(r.Context(), r, scopes)
			if res.Action != authlete.ActionOK {
				h.logger.Info("Access token rejected",
					"action", res.Action,
					"request_id", security.GetRequestID(r.Context()))
				h.server.Auditor.LogAccessDenied(res.Subject, h.clientIP(r), string(res.Action), scopes)
				clear(w.Header())
				res.WriteResponse(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithToken(r.Context(), res)))
		})
	}
}

// ServeMe handles GET /me: the subject of the access token.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	token, ok := TokenFromContext(r.Context())
	if !ok {
		h.writeHTTPError(w, r, ErrServerError("Missing token information"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, MeResponse{Subject: token.Subject})
}

// ServeSaying handles GET /saying: a random saying.
func (h *Handler) ServeSaying(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, Sayings[rand.IntN(len(Sayings))])
}

// ServeHealth reports the health of the claim providers.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := HealthResponse{Status: "ok", Checks: make(map[string]string)}
	status := http.StatusOK
	for name, err := range h.server.HealthCheck(ctx) {
		if err != nil {
			h.logger.Warn("Health check failed", "component", name, "error", err)
			res.Checks[name] = "unhealthy"
			res.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[name] = "ok"
	}
	h.writeJSON(w, r, status, res)
}

// RateLimit rejects clients that exceed the per-IP rate.
func (h *Handler) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.server.RateLimiter != nil {
			clientIP := h.clientIP(r)
			if !h.server.RateLimiter.Allow(clientIP) {
				h.logger.Warn("Rate limit exceeded", "path", r.URL.Path)
				if h.server.Instrumentation != nil {
					h.server.Instrumentation.Metrics().RecordRateLimitExceeded(r.Context(), "ip")
				}
				h.server.Auditor.LogRateLimitExceeded(clientIP, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				h.writeHTTPError(w, r, ErrRateLimitExceeded("Rate limit exceeded"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) clientIP(r *http.Request) string {
	rl := h.server.Config.RateLimit
	return security.GetClientIP(r, rl.TrustProxy, rl.TrustedProxyCount)
}

// instrumentHTTP wraps each request in an http.request span and records
// status and duration per route pattern.
func (h *Handler) instrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inst := h.server.Instrumentation
		if inst == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx, span := inst.Tracer("http").Start(r.Context(), "http.request")
		defer span.End()
		if inst.ShouldLogClientIPs() {
			instrumentation.AddSecurityAttributes(span, h.clientIP(r))
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		instrumentation.AddHTTPAttributes(span, r.Method, endpoint, status)
		if status >= http.StatusInternalServerError {
			instrumentation.SetSpanError(span, http.StatusText(status))
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		inst.Metrics().RecordHTTPRequest(ctx, r.Method, endpoint, status,
			float64(time.Since(start).Milliseconds()))
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	security.SetSecurityHeaders(w, r.TLS != nil)
	security.SetNoCacheHeaders(w)
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeHTTPError(w http.ResponseWriter, r *http.Request, err *HTTPError) {
	if err.Status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "code", err.Code, "description", err.Description)
	}
	h.writeJSON(w, r, err.Status, ErrorResponse{
		Error:            err.Code,
		ErrorDescription: err.Description,
	})
}

type contextKey string

const tokenContextKey contextKey = "introspection"

// ContextWithToken stores an introspection result in ctx.
func ContextWithToken(ctx context.Context, token *authlete.IntrospectionResponse) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the introspection result stored by ProtectResource.
func TokenFromContext(ctx context.Context) (*authlete.IntrospectionResponse, bool) {
	token, ok := ctx.Value(tokenContextKey).(*authlete.IntrospectionResponse)
	return token, ok && token != nil
}
