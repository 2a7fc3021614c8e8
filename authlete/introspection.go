package authlete

import (
	"context"
	"net/http"
	"strings"
)

// Action tells the resource server what to do with an access token.
type Action string

// Introspection actions.
const (
	ActionInternalServerError Action = "INTERNAL_SERVER_ERROR"
	ActionBadRequest          Action = "BAD_REQUEST"
	ActionUnauthorized        Action = "UNAUTHORIZED"
	ActionForbidden           Action = "FORBIDDEN"
	ActionOK                  Action = "OK"
)

// StatusCode returns the HTTP status that carries the action.
// Unknown actions map to 500.
func (a Action) StatusCode() int {
	switch a {
	case ActionOK:
		return http.StatusOK
	case ActionBadRequest:
		return http.StatusBadRequest
	case ActionUnauthorized:
		return http.StatusUnauthorized
	case ActionForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Challenges used when the request never reaches Authlete.
const (
	challengeMissingToken = `Bearer error="invalid_token",error_description="The request does not contain a valid access token."`
	challengeServerError  = `Bearer error="server_error",error_description="Introspection API call failed."`
)

// IntrospectionRequest is the body of the introspection API call.
type IntrospectionRequest struct {
	// Token is the access token to introspect
	Token string `json:"token"`

	// Scopes must all be covered by the token
	Scopes []string `json:"scopes,omitempty"`

	// Subject, if set, must match the token's subject
	Subject string `json:"subject,omitempty"`
}

// IntrospectionResponse is the result of the introspection API call.
type IntrospectionResponse struct {
	ResultCode      string   `json:"resultCode,omitempty"`
	ResultMessage   string   `json:"resultMessage,omitempty"`
	Action          Action   `json:"action"`
	ResponseContent string   `json:"responseContent,omitempty"`
	ClientID        int64    `json:"clientId,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	Scopes          []string `json:"scopes,omitempty"`
	ExpiresAt       int64    `json:"expiresAt,omitempty"`
	Existent        bool     `json:"existent"`
	Usable          bool     `json:"usable"`
	Sufficient      bool     `json:"sufficient"`
	Refreshable     bool     `json:"refreshable"`
}

// WriteResponse writes the response Authlete prepared for the action:
// the mapped status, the WWW-Authenticate challenge, no-cache headers and
// an empty body.
func (r *IntrospectionResponse) WriteResponse(w http.ResponseWriter) {
	h := w.Header()
	if r.ResponseContent != "" {
		h.Set("WWW-Authenticate", r.ResponseContent)
	}
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	w.WriteHeader(r.Action.StatusCode())
}

// Introspector calls the introspection API.
type Introspector interface {
	Introspect(ctx context.Context, req *IntrospectionRequest) (*IntrospectionResponse, error)
}

// ProtectResource extracts the access token from r and introspects it
// against the required scopes and optional subject. It never returns nil:
// a missing token yields a local BAD_REQUEST result and a failed API call
// yields a local INTERNAL_SERVER_ERROR result. The error of a failed call is
// returned alongside for logging.
func ProtectResource(ctx context.Context, in Introspector, r *http.Request, scopes []string, subject string) (*IntrospectionResponse, error) {
	token := ExtractAccessToken(r)
	if token == "" {
		return &IntrospectionResponse{
			Action:          ActionBadRequest,
			ResponseContent: challengeMissingToken,
		}, nil
	}

	res, err := in.Introspect(ctx, &IntrospectionRequest{
		Token:   token,
		Scopes:  scopes,
		Subject: subject,
	})
	if err != nil {
		return &IntrospectionResponse{
			Action:          ActionInternalServerError,
			ResponseContent: challengeServerError,
		}, err
	}

	return res, nil
}

// ExtractAccessToken returns the access token of r (RFC 6750): the
// Authorization header's Bearer credentials first, then the access_token
// form or query parameter. Returns "" when none is present.
func ExtractAccessToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	if r.Method == http.MethodPost && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if token := r.PostFormValue("access_token"); token != "" {
			return token
		}
	}

	return r.URL.Query().Get("access_token")
}
