package services

import (
	"errors"
	"sort"
	"strings"

	"yatube/app/models"
)

var (
	// ErrForbidden is returned when a user acts on content they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Authenticate.
	ErrInvalidCredentials = errors.New("please enter a correct username and password")
)

// ValidationError carries one message per form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func invalid(err error) error {
	return &ValidationError{Fields: models.FieldErrors(err)}
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FieldErrors returns the per-field messages of err, or nil when err is
// not a validation failure.
func FieldErrors(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}
