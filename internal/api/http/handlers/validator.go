package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util/errorutil"
)

// Validator wraps go-playground/validator and reports failures as
// VALIDATION_FAILED domain errors.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a ready validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate checks struct tags on i.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	msgs := make([]string, 0, len(ve))
	fields := make(map[string]any, len(ve))
	for _, fe := range ve {
		msg := fieldError(fe)
		msgs = append(msgs, msg)
		fields[fe.Namespace()] = msg
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "), fields)
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
