package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/utafrali/commerce-auth/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", fieldName(err), msgForTag(err)))
	}
	return strings.Join(msgs, "; ")
}

// FieldErrors returns the per-field failures in response envelope form.
func (e *ValidationError) FieldErrors() []apperrors.FieldError {
	fields := make([]apperrors.FieldError, 0, len(e.Errors))
	for _, err := range e.Errors {
		fields = append(fields, apperrors.FieldError{
			Field:   fieldName(err),
			Message: msgForTag(err),
		})
	}
	return fields
}

// fieldName lowercases the first rune of the struct field name so error
// output matches the JSON field naming used by request DTOs.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
