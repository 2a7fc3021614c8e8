package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// IsBcryptHash reports whether s looks like a bcrypt hash ("$2a$", "$2b$", "$2y$").
func IsBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$"))
}

// CompareSecret reports whether presented matches expected without leaking
// timing information. expected may be a bcrypt hash, in which case
// presented is checked against it.
func CompareSecret(presented, expected string) bool {
	if IsBcryptHash(expected) {
		return bcrypt.CompareHashAndPassword([]byte(expected), []byte(presented)) == nil
	}

	// digests have equal length, so the comparison time does not depend on
	// the length of either input
	p := sha256.Sum256([]byte(presented))
	e := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(p[:], e[:]) == 1
}

// HashSecret returns a bcrypt hash of secret for use in configuration.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
