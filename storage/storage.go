// Package storage defines interfaces for persisting end-user profiles.
// It supports various backend implementations including in-memory and Redis.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrProfileNotFound is returned when no profile is stored for a subject.
var ErrProfileNotFound = errors.New("profile not found")

// MaxSubjectLength is the maximum allowed length of a subject identifier.
const MaxSubjectLength = 256

// ProfileStore defines the interface for storing and retrieving profiles.
// All methods accept context.Context for tracing and cancellation.
type ProfileStore interface {
	// GetProfile retrieves the profile of a subject.
	// Returns an error wrapping ErrProfileNotFound when none is stored.
	GetProfile(ctx context.Context, subject string) (*Profile, error)

	// SaveProfile stores the profile under profile.Subject
	SaveProfile(ctx context.Context, profile *Profile) error

	// DeleteProfile removes the profile of a subject
	DeleteProfile(ctx context.Context, subject string) error
}

// Profile holds the claim values the OpenID provider keeps about an end-user.
type Profile struct {
	// Subject is the end-user identifier
	Subject string `json:"subject"`

	// Claims maps standard claim names to their values
	Claims map[string]any `json:"claims,omitempty"`

	// UpdatedAt is the last time the profile was modified
	UpdatedAt time.Time `json:"updated_at"`
}

// Fields returns the profile as a flat claim map. "updated_at" is derived
// from UpdatedAt unless the claims already carry one.
func (p *Profile) Fields() map[string]any {
	fields := make(map[string]any, len(p.Claims)+1)
	for k, v := range p.Claims {
		fields[k] = v
	}
	if _, ok := fields["updated_at"]; !ok && !p.UpdatedAt.IsZero() {
		fields["updated_at"] = p.UpdatedAt.Unix()
	}
	return fields
}

// Clone returns a deep copy of the top-level claim map.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.Claims != nil {
		c.Claims = make(map[string]any, len(p.Claims))
		for k, v := range p.Claims {
			c.Claims[k] = v
		}
	}
	return &c
}

// ValidateSubject checks a subject identifier before it is used as a key.
func ValidateSubject(subject string) error {
	if subject == "" {
		return fmt.Errorf("subject cannot be empty")
	}
	if len(subject) > MaxSubjectLength {
		return fmt.Errorf("subject exceeds maximum length of %d", MaxSubjectLength)
	}
	return nil
}
