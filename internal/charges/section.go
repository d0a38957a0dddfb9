package charges

import (
	"bytes"
	"encoding/json"
)

// Section is an optional part of a claim that is either disabled or enabled
// with details. Calculators only ever see the details of an enabled section.
type Section[T any] struct {
	enabled bool
	details T
}

// Enabled returns a section carrying details.
func Enabled[T any](details T) Section[T] {
	return Section[T]{enabled: true, details: details}
}

// Disabled returns an empty section.
func Disabled[T any]() Section[T] {
	return Section[T]{}
}

// Get returns the details and whether the section is enabled.
func (s Section[T]) Get() (T, bool) {
	return s.details, s.enabled
}

// IsEnabled reports whether the section carries details.
func (s Section[T]) IsEnabled() bool {
	return s.enabled
}

// Price applies fn to an enabled section and returns the re-priced section.
// Disabled sections pass through untouched.
func Price[T any](s Section[T], fn func(T) (T, error)) (Section[T], error) {
	details, ok := s.Get()
	if !ok {
		return s, nil
	}
	priced, err := fn(details)
	if err != nil {
		return s, err
	}
	return Enabled(priced), nil
}

type sectionJSON[T any] struct {
	Enabled bool `json:"enabled"`
	Details *T   `json:"details,omitempty"`
}

// MarshalJSON encodes the section as {"enabled":bool,"details":{...}}.
func (s Section[T]) MarshalJSON() ([]byte, error) {
	if !s.enabled {
		return json.Marshal(sectionJSON[T]{})
	}
	details := s.details
	return json.Marshal(sectionJSON[T]{Enabled: true, Details: &details})
}

// UnmarshalJSON accepts the MarshalJSON form; null decodes as disabled.
func (s *Section[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Disabled[T]()
		return nil
	}
	var raw sectionJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Enabled || raw.Details == nil {
		*s = Disabled[T]()
		return nil
	}
	*s = Enabled(*raw.Details)
	return nil
}
