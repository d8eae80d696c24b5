package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/upb/proof-layer/services"
)

var validate = newValidator()

// newValidator reports fields by their JSON names (top_k, not TopK)
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// fieldMessages formats a failed rule as "<field> <text>", with the rule
// parameter substituted for %s
var fieldMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"oneof":    "must be one of: %s",
}

// ValidateStruct validates request bodies tagged with `validate`
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}
	return err
}

// ValidationError lists the failed fields of a request body.
// It unwraps to services.ErrInvalidInput.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return services.ErrInvalidInput
}

// NewValidationError converts validator output into a ValidationError
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	text, ok := fieldMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s validation failed on '%s' tag", fe.Field(), fe.Tag())
	}
	if strings.Contains(text, "%s") {
		text = fmt.Sprintf(text, fe.Param())
	}
	return fe.Field() + " " + text
}

// IsValidationError reports whether err carries field errors
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field errors of err, or nil
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// ValidateUUID checks that s is a UUID, as trace ids are
func ValidateUUID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("invalid UUID format: %q", s), services.ErrInvalidInput)
	}
	return nil
}
