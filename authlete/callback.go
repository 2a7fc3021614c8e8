package authlete

// AuthenticationCallbackRequest is the body Authlete posts to the
// authentication callback endpoint.
type AuthenticationCallbackRequest struct {
	ServiceAPIKey    string   `json:"serviceApiKey,omitempty"`
	ClientID         int64    `json:"clientId,omitempty"`
	ID               string   `json:"id,omitempty"`
	Password         string   `json:"password,omitempty"`
	Claims           []string `json:"claims,omitempty"`
	ClaimsLocales    []string `json:"claimsLocales,omitempty"`
	SNS              string   `json:"sns,omitempty"`
	AccessToken      string   `json:"accessToken,omitempty"`
	RefreshToken     string   `json:"refreshToken,omitempty"`
	ExpiresIn        int64    `json:"expiresIn,omitempty"`
	RawTokenResponse string   `json:"rawTokenResponse,omitempty"`
}

// AuthenticationCallbackResponse is the answer to the authentication callback.
// Subject and Claims are omitted when absent.
type AuthenticationCallbackResponse struct {
	Authenticated bool    `json:"authenticated"`
	Subject       *string `json:"subject,omitempty"`
	Claims        *string `json:"claims,omitempty"`
}

// SNS names a social network in the callback request.
const SNSFacebook = "FACEBOOK"
