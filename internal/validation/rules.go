// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/keygateio/keygate/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
})

// ScopeName validates a single scope: non-blank, no whitespace (scopes are
// space-delimited on the wire).
var ScopeName = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_scope_type", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_scope_blank", "scope cannot be blank")
	}
	if strings.ContainsAny(s, " \t\n") {
		return validation.NewError("validation_scope_whitespace", "scope cannot contain whitespace")
	}
	return nil
})
