package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/authlete/authlete-go-samples/claims"
	"github.com/authlete/authlete-go-samples/providers"
	"github.com/authlete/authlete-go-samples/storage"
)

// Compile-time check that Provider implements the providers.ClaimProvider interface.
var _ providers.ClaimProvider = (*Provider)(nil)

// providerName is the name returned by Provider.Name().
const providerName = "local"

// Mapping maps every standard claim onto the profile attribute of the same name.
var Mapping = identityMapping()

func identityMapping() claims.Mapping {
	fields := make(map[string]string, len(claims.StandardClaims))
	for _, c := range claims.StandardClaims {
		fields[c] = c
	}
	return claims.Mapping{
		Fields: fields,
		Formatters: map[string]claims.FormatFunc{
			claims.ClaimUpdatedAt: claims.FormatUpdatedAt,
		},
	}
}

// pinger is implemented by stores that can report their own health.
type pinger interface {
	Ping(ctx context.Context) error
}

// Provider answers claims from a storage.ProfileStore.
type Provider struct {
	store storage.ProfileStore
}

// NewProvider creates a local claim provider.
func NewProvider(store storage.ProfileStore) (*Provider, error) {
	if store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	return &Provider{store: store}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// CollectClaims answers the requested claims from the subject's stored profile.
func (p *Provider) CollectClaims(ctx context.Context, req providers.ClaimRequest) (claims.Values, error) {
	set := Mapping.Normalize(req.Claims)
	if set == nil {
		return nil, nil
	}

	fields, err := p.profileFields(ctx, req.Subject)
	if err != nil {
		return nil, err
	}

	return Mapping.Format(set, fields), nil
}

// profileFields returns the stored attributes of subject. A subject without
// a stored profile is known only by its identifier, which doubles as the
// given name.
func (p *Provider) profileFields(ctx context.Context, subject string) (map[string]any, error) {
	profile, err := p.store.GetProfile(ctx, subject)
	if errors.Is(err, storage.ErrProfileNotFound) {
		return map[string]any{claims.ClaimGivenName: subject}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrProviderUnavailable, err)
	}
	return profile.Fields(), nil
}

// HealthCheck pings the backing store when it supports it.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if pg, ok := p.store.(pinger); ok {
		if err := pg.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", providers.ErrProviderUnavailable, err)
		}
	}
	return nil
}
