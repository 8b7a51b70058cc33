// Package validation checks incoming user fields against structural rules
// before any persistence action.
package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Validation limits.
const (
	// MinNameLength is the minimum length for a user name.
	MinNameLength = 2

	// MaxNameLength is the maximum length for a user name.
	MaxNameLength = 128
)

// Mode selects which fields are required.
type Mode int

const (
	// Full requires every field to be present (create).
	Full Mode = iota

	// Partial validates only the fields that are present (update).
	Partial
)

// Fields holds the raw input fields. A nil pointer means the field
// was absent from the request.
type Fields struct {
	Name  *string
	Email *string
}

// Errors maps a field name to its violation messages.
// An empty map means the input is valid.
type Errors map[string][]string

// emailPattern matches standard email syntax: local part, @, domain with a dot.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks fields against the user rules for the given mode.
// It has no side effects; callers decide what to do with the result.
func Validate(fields Fields, mode Mode) Errors {
	errs := Errors{}

	if fields.Name == nil {
		if mode == Full {
			errs.add("name", "Missing data for required field.")
		}
	} else if n := utf8.RuneCountInString(*fields.Name); n < MinNameLength || n > MaxNameLength {
		errs.add("name", fmt.Sprintf("Length must be between %d and %d.", MinNameLength, MaxNameLength))
	}

	if fields.Email == nil {
		if mode == Full {
			errs.add("email", "Missing data for required field.")
		}
	} else if !emailPattern.MatchString(*fields.Email) {
		errs.add("email", "Not a valid email address.")
	}

	return errs
}

func (e Errors) add(field, message string) {
	e[field] = append(e[field], message)
}
