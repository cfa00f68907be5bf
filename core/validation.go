package core

import (
	"sort"
	"strings"
)

// FieldErrors maps a form field name to its error messages.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge copies the messages of other for fields that have no errors in e yet,
// so the first problem found for a field is the one reported.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		if _, seen := e[field]; seen {
			continue
		}
		for _, message := range messages {
			e.Add(field, message)
		}
	}
}

// ValidationError is returned when user input breaks a domain rule.
type ValidationError struct {
	Fields FieldErrors
}

func NewValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, field := range names {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
