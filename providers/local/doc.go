// Package local implements a claim provider backed by the OpenID provider's
// own profile store.
//
// Stored profiles already carry claim values, so the field mapping is the
// identity over the standard claims. When no profile exists for a subject,
// given_name is answered with the subject itself.
package local
