package httputil

import (
	"github.com/diallo/callreview/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate validates a struct using go-playground/validator and returns the
// failing fields keyed by their struct field name.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	details := make(map[string]string)
	for _, e := range validationErrors {
		details[e.Field()] = formatValidationError(e)
	}
	return details
}

// ValidateRequest validates v and wraps failures in a VALIDATION_ERROR AppError
func ValidateRequest(v interface{}) error {
	if details := Validate(v); details != nil {
		return errors.Validation(details)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "notblank":
		return "must not be blank"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "invalid value"
	}
}

// RegisterCustomValidation registers a custom validation function
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}
