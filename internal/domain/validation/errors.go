package validation

import (
	"sort"
	"strings"
)

// Error collects every failing field of one input. Fields maps a field path
// to a human readable message.
type Error struct {
	Fields map[string]string
}

func New() *Error {
	return &Error{Fields: make(map[string]string)}
}

// Add records msg for field unless the field already failed.
func (e *Error) Add(field, msg string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = msg
}

func (e *Error) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *Error) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns nil when nothing failed, so callers can `return v.Err()`.
func (e *Error) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
