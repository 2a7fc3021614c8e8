package claims

import (
	"encoding/json"
	"fmt"
	"strings"
)

// localeSeparator separates a claim name from its language tag ("name#ja").
const localeSeparator = "#"

// Set is an ordered collection of distinct, normalized claim names.
// A nil Set means no supported claim was requested.
type Set []string

// Contains reports whether name is part of the set.
func (s Set) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Mapping binds claim names to provider field names and, optionally, to a
// formatter that reshapes the provider value into the claim value.
type Mapping struct {
	// Fields maps a claim name to the provider field that carries it.
	Fields map[string]string

	// Formatters maps a claim name to its value transform. Claims without
	// an entry are passed through unchanged.
	Formatters map[string]FormatFunc
}

// Supports reports whether the mapping can answer the given claim.
func (m Mapping) Supports(claim string) bool {
	_, ok := m.Fields[claim]
	return ok
}

// Normalize reduces raw requested claim names to the supported base names.
// A trailing "#locale" qualifier is removed before matching, duplicates are
// dropped and first-seen order is kept. Returns nil when nothing remains.
func (m Mapping) Normalize(names []string) Set {
	var set Set
	for _, raw := range names {
		name, _, _ := strings.Cut(raw, localeSeparator)
		if !m.Supports(name) || set.Contains(name) {
			continue
		}
		set = append(set, name)
	}
	return set
}

// ProviderFields returns the provider field names for the set, in set order.
func (m Mapping) ProviderFields(set Set) []string {
	fields := make([]string, 0, len(set))
	for _, claim := range set {
		fields = append(fields, m.Fields[claim])
	}
	return fields
}

// Format builds claim values from a provider response. Only claims in set
// whose provider field is present and non-null are considered, and claims
// whose formatter yields no value are omitted. Returns nil when empty.
func (m Mapping) Format(set Set, fields map[string]any) Values {
	var values Values
	for _, claim := range set {
		raw, ok := fields[m.Fields[claim]]
		if !ok || raw == nil {
			continue
		}

		value, ok := m.formatValue(claim, raw)
		if !ok {
			continue
		}

		if values == nil {
			values = make(Values, len(set))
		}
		values[claim] = value
	}
	return values
}

func (m Mapping) formatValue(claim string, raw any) (any, bool) {
	format, ok := m.Formatters[claim]
	if !ok {
		return raw, true
	}
	value, ok := format(raw)
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// Values holds formatted claim values keyed by claim name.
type Values map[string]any

// JSON serializes the values as a JSON object. It returns nil when there
// are no values, which callers report as "no claims".
func (v Values) JSON() (*string, error) {
	if len(v) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(map[string]any(v))
	if err != nil {
		return nil, fmt.Errorf("failed to encode claims: %w", err)
	}
	s := string(data)
	return &s, nil
}

// Names returns the claim names present in v in no particular order.
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	return names
}
