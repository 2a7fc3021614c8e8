package claims

import (
	"regexp"
	"strings"
	"time"
)

// Standard claim names from OpenID Connect Core 1.0, Section 5.1.
const (
	ClaimName                = "name"
	ClaimGivenName           = "given_name"
	ClaimFamilyName          = "family_name"
	ClaimMiddleName          = "middle_name"
	ClaimNickname            = "nickname"
	ClaimPreferredUsername   = "preferred_username"
	ClaimProfile             = "profile"
	ClaimPicture             = "picture"
	ClaimWebsite             = "website"
	ClaimEmail               = "email"
	ClaimEmailVerified       = "email_verified"
	ClaimGender              = "gender"
	ClaimBirthdate           = "birthdate"
	ClaimZoneinfo            = "zoneinfo"
	ClaimLocale              = "locale"
	ClaimPhoneNumber         = "phone_number"
	ClaimPhoneNumberVerified = "phone_number_verified"
	ClaimAddress             = "address"
	ClaimUpdatedAt           = "updated_at"
)

// StandardClaims lists every standard claim except "sub".
var StandardClaims = []string{
	ClaimName, ClaimGivenName, ClaimFamilyName, ClaimMiddleName, ClaimNickname,
	ClaimPreferredUsername, ClaimProfile, ClaimPicture, ClaimWebsite, ClaimEmail,
	ClaimEmailVerified, ClaimGender, ClaimBirthdate, ClaimZoneinfo, ClaimLocale,
	ClaimPhoneNumber, ClaimPhoneNumberVerified, ClaimAddress, ClaimUpdatedAt,
}

// FormatFunc converts a provider value into a claim value.
// The boolean result is false when the value cannot be converted.
type FormatFunc func(value any) (any, bool)

var birthdatePattern = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)

// FormatBirthdate converts "MM/DD/YYYY" into "YYYY-MM-DD".
func FormatBirthdate(value any) (any, bool) {
	s, ok := value.(string)
	if !ok {
		return nil, false
	}
	m := birthdatePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	return m[3] + "-" + m[1] + "-" + m[2], true
}

// FormatLocale converts "xx_XX" into the BCP 47 form "xx-XX".
func FormatLocale(value any) (any, bool) {
	s, ok := value.(string)
	if !ok {
		return nil, false
	}
	return strings.ReplaceAll(s, "_", "-"), true
}

// FormatAddress converts a place object {"id": ..., "name": NAME} into an
// address claim {"formatted": NAME}. Other fields are dropped.
func FormatAddress(value any) (any, bool) {
	place, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	name, ok := place["name"].(string)
	if !ok {
		return nil, false
	}
	return map[string]any{"formatted": name}, true
}

// timestampLayouts are tried in order by FormatUpdatedAt.
// The second layout covers numeric offsets without a colon ("+0000").
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

// FormatUpdatedAt converts an ISO-8601 timestamp into seconds since the
// Unix epoch. Numeric values are taken as epoch seconds already.
func FormatUpdatedAt(value any) (any, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Unix(), true
			}
		}
	}
	return nil, false
}
