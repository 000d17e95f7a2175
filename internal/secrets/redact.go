package secrets

import (
	"regexp"
	"sort"
	"strings"
)

// Placeholder replaces redacted values.
const Placeholder = "[REDACTED]"

var keyShapes = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9_\-]{8,}|AIza[0-9A-Za-z_\-]{20,})|(?i:bearer\s+)[A-Za-z0-9._\-]{8,}`)

// Redactor removes known secret values and key-shaped substrings from text.
// A nil Redactor still removes key-shaped substrings.
type Redactor struct {
	values []string
}

// NewRedactor returns a Redactor for the given secret values. Empty values
// are ignored; every other configured value is redacted whatever its length.
func NewRedactor(values ...string) *Redactor {
	r := &Redactor{}
	for _, v := range values {
		r.Add(v)
	}
	return r
}

// Add registers one more secret value.
func (r *Redactor) Add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, v := range r.values {
		if v == value {
			return
		}
	}
	r.values = append(r.values, value)
	// Longest first so a key that contains another is replaced whole.
	sort.SliceStable(r.values, func(i, j int) bool { return len(r.values[i]) > len(r.values[j]) })
}

// Redact returns s with every secret replaced by Placeholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	if r != nil {
		for _, v := range r.values {
			s = strings.ReplaceAll(s, v, Placeholder)
		}
	}
	return keyShapes.ReplaceAllString(s, Placeholder)
}

// RedactError returns the redacted error message, or "" for a nil error.
func (r *Redactor) RedactError(err error) string {
	if err == nil {
		return ""
	}
	return r.Redact(err.Error())
}
