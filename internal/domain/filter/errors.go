package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the sentinel kind for filter validation failures.
var ErrValidation = errors.New("invalid discovery filter")

// FieldError names a single offending filter field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every offending field so the HTTP layer
// can report them all in one response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) has() bool { return len(e.Fields) > 0 }

// FieldNames returns the offending field names in report order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidation) match wrapped validation errors.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
