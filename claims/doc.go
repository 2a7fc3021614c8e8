// Package claims turns requested OpenID Connect claim names into a claims
// payload built from provider profile fields.
//
// The pipeline has three steps:
//
//  1. Normalize: strip "#locale" qualifiers, drop names the provider cannot
//     answer and remove duplicates.
//  2. Fetch (done by a provider): request the mapped provider fields.
//  3. Format: convert each present provider value into its claim form and
//     drop everything that was not requested.
//
// A Mapping describes one provider: which field answers which claim and how
// the field value must be reshaped. Mappings are read-only after
// construction and safe for concurrent use.
//
// Example:
//
//	set := mapping.Normalize([]string{"given_name", "locale#ja", "unknown"})
//	if set == nil {
//	    // no supported claims requested
//	}
//	values := mapping.Format(set, profile)
//	payload, err := values.JSON()
package claims
