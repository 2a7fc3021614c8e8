// Package facebook implements a claim provider backed by the Facebook Graph API.
//
// Requested OpenID Connect claims are translated into Graph API profile
// fields, fetched with the end-user's Facebook access token in a single
// request and converted back into claim values. Birthdays, locales,
// locations and update times are reshaped into their OpenID Connect forms.
//
// The provider also carries the optional Facebook login leg (authorization
// URL and code exchange) through golang.org/x/oauth2.
package facebook
