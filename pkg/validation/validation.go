// Package validation wraps go-playground/validator with the field naming and
// message format used across giteebridge.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Get returns the shared validator. Field names in errors are taken from the
// json tag, falling back to the yaml tag and then the Go name.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(tagName)
	})
	return instance
}

func tagName(f reflect.StructField) string {
	for _, key := range []string{"json", "yaml"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Struct validates v and returns an error whose message lists every failed
// field. The underlying validator.ValidationErrors stays reachable through
// errors.As.
func Struct(v any) error {
	err := Get().Struct(v)
	if err == nil {
		return nil
	}
	return &Error{Err: err}
}

// Error is a failed validation.
type Error struct {
	Err error
}

func (e *Error) Error() string { return FormatError(e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Fields returns the names of the fields that failed, in order.
func (e *Error) Fields() []string {
	var verrs validator.ValidationErrors
	if !errors.As(e.Err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldPath(fe))
	}
	return fields
}

// FormatError renders err as a human readable message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		messages := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			messages = append(messages, formatFieldError(fe))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be %s", typeErr.Field, typeErr.Type.String())
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "invalid JSON format"
	}

	return err.Error()
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read as "owner.login".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e)

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s", field, e.Param())
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", field, e.Param())
	case "url", "http_url":
		return fmt.Sprintf("field '%s' must be a valid URL", field)
	case "gt":
		return fmt.Sprintf("field '%s' must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("field '%s' must be greater than or equal to %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("field '%s' must be less than or equal to %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("field '%s' must be host:port", field)
	default:
		return fmt.Sprintf("field '%s' validation failed on '%s' tag", field, e.Tag())
	}
}
