package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestProfile_Fields(t *testing.T) {
	updated := time.Date(2014, time.May, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		profile Profile
		want    map[string]any
	}{
		{
			name: "derives updated_at",
			profile: Profile{
				Subject:   "alice",
				Claims:    map[string]any{"given_name": "Alice"},
				UpdatedAt: updated,
			},
			want: map[string]any{"given_name": "Alice", "updated_at": int64(1398902400)},
		},
		{
			name: "explicit updated_at wins",
			profile: Profile{
				Subject:   "alice",
				Claims:    map[string]any{"updated_at": "2020-01-01T00:00:00Z"},
				UpdatedAt: updated,
			},
			want: map[string]any{"updated_at": "2020-01-01T00:00:00Z"},
		},
		{
			name:    "zero time omitted",
			profile: Profile{Subject: "alice"},
			want:    map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.profile.Fields()); diff != "" {
				t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProfile_Clone(t *testing.T) {
	p := &Profile{Subject: "alice", Claims: map[string]any{"name": "Alice"}}
	c := p.Clone()
	c.Claims["name"] = "Mallory"

	if p.Claims["name"] != "Alice" {
		t.Error("Clone() shares the claim map with the original")
	}
}

func TestValidateSubject(t *testing.T) {
	if err := ValidateSubject("alice"); err != nil {
		t.Errorf("ValidateSubject(alice) error = %v", err)
	}
	if err := ValidateSubject(""); err == nil {
		t.Error("ValidateSubject(\"\") expected error")
	}
	if err := ValidateSubject(strings.Repeat("a", MaxSubjectLength+1)); err == nil {
		t.Error("ValidateSubject(long) expected error")
	}
}
