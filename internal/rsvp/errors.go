package rsvp

import (
	"fmt"
	"sort"
	"strings"
)

const (
	FieldGuest     = "guest"
	FieldAttending = "attending"
	FieldEmail     = "email"
	FieldName      = "name"
)

// FieldErrors maps a field name to the message shown next to it
type FieldErrors map[string]string

// ValidationError collects recoverable problems with a submission. Members is
// keyed by guest id; Form holds errors that belong to no single guest.
type ValidationError struct {
	Members map[int64]FieldErrors `json:"members,omitempty"`
	Form    FieldErrors           `json:"form,omitempty"`
}

// NewFormError builds a ValidationError carrying a single form-level message.
func NewFormError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.addForm(field, msg)
	return e
}

func (e *ValidationError) add(id int64, field, msg string) {
	if e.Members == nil {
		e.Members = make(map[int64]FieldErrors)
	}
	if e.Members[id] == nil {
		e.Members[id] = make(FieldErrors)
	}
	e.Members[id][field] = msg
}

func (e *ValidationError) addForm(field, msg string) {
	if e.Form == nil {
		e.Form = make(FieldErrors)
	}
	e.Form[field] = msg
}

func (e *ValidationError) empty() bool {
	return len(e.Members) == 0 && len(e.Form) == 0
}

// Field returns the message recorded for a member field, if any.
func (e *ValidationError) Field(id int64, field string) (string, bool) {
	if e == nil {
		return "", false
	}
	msg, ok := e.Members[id][field]
	return msg, ok
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Form {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	for id, fields := range e.Members {
		for field, msg := range fields {
			parts = append(parts, fmt.Sprintf("guest %d %s: %s", id, field, msg))
		}
	}
	sort.Strings(parts)
	return "rsvp: invalid submission: " + strings.Join(parts, "; ")
}
