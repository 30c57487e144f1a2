package models

import (
	"sort"
	"strings"
)

// FieldErrors collects validation failures keyed by form field path.
type FieldErrors map[string]string

// Add records msg for field, keeping the first message per field.
func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = msg
}

// Error renders the failures sorted by field.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when no failure was recorded.
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
