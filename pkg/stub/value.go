package stub

import (
	"regexp"
)

// Value is a literal-or-regex matcher used for URLs, query parameters,
// headers and post bodies. A candidate matches when it equals the raw
// value, or when the raw value compiles as a regular expression that
// matches the whole candidate.
type Value struct {
	raw string
	re  *regexp.Regexp
}

// NewValue compiles raw once. Values that are not valid RE2 expressions
// only ever match literally.
func NewValue(raw string) Value {
	v := Value{raw: raw}
	if re, err := regexp.Compile("^(?:" + raw + ")$"); err == nil {
		v.re = re
	}
	return v
}

// String returns the value as it was declared.
func (v Value) String() string {
	return v.raw
}

// IsRegex reports whether the value compiled as a regular expression.
func (v Value) IsRegex() bool {
	return v.re != nil
}

// Matches reports whether s satisfies the value.
func (v Value) Matches(s string) bool {
	if s == v.raw {
		return true
	}
	return v.re != nil && v.re.MatchString(s)
}

// MarshalYAML emits the declared text.
func (v Value) MarshalYAML() (any, error) {
	return v.raw, nil
}

// MarshalText emits the declared text.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}
