package model

import (
	"encoding/json"
	"strings"
	"time"
)

// optional.go defines JSON field wrappers that distinguish an absent
// key from an explicit null. The sync endpoint has partial-update
// semantics: an omitted key leaves the column unchanged while null
// clears it, so plain pointers are not enough.

// OptionalString records whether a string field appeared in the JSON
// body at all. Value is nil for an explicit null or a blank string.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// OptionalTime is OptionalString's counterpart for timestamps. It
// accepts RFC 3339 strings and epoch milliseconds, which is how the
// identity provider emits times depending on the call path. Unparseable
// values are treated as absent, mirroring the forgiving behavior of
// the mirror endpoint's callers.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		o.Set = true
		o.Value = nil
		return nil
	}
	if t, ok := ParseTimestamp(b); ok {
		o.Set = true
		o.Value = &t
	}
	return nil
}

// ParseTimestamp decodes a raw JSON scalar into a UTC time. Numbers
// are read as epoch milliseconds, strings as RFC 3339.
func ParseTimestamp(b []byte) (time.Time, bool) {
	var ms float64
	if err := json.Unmarshal(b, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
