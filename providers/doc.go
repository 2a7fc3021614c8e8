// Package providers defines the claim provider interface and its request type.
//
// A claim provider answers OpenID Connect claims about an authenticated
// end-user. Every provider runs the same pipeline from package claims:
// requested names are normalized, the backing source is queried for the
// mapped fields, and the answer is formatted into claim values.
//
// Implementations are provided in subpackages:
//   - providers/facebook: Facebook Graph API profile fields
//   - providers/local: profiles kept in a storage.ProfileStore
//   - providers/mock: Mock provider for testing
//
// Errors are explicit. Transport failures wrap ErrProviderUnavailable,
// non-2xx answers wrap ErrUnexpectedStatus and undecodable bodies wrap
// ErrMalformedProfile. Callers decide whether to degrade.
package providers
