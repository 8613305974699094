package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error carries every failed rule for a request, keyed by field name.
type Error struct {
	Failures map[string][]string
}

// NewError returns an Error holding a single failure.
func NewError(field, message string) *Error {
	e := &Error{}
	e.Add(field, message)
	return e
}

// Add appends message to the failures recorded for field.
func (e *Error) Add(field, message string) {
	if e.Failures == nil {
		e.Failures = make(map[string][]string)
	}
	e.Failures[field] = append(e.Failures[field], message)
}

func (e *Error) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Failures))
	for field := range e.Failures {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Failures[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
