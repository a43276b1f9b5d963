package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/q0rtex/qortex-go/pkg/errors"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field string
	Tag   string
	Value interface{}
}

func (e *ValidationError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min", "gte":
		return fmt.Sprintf("%s is below its minimum (got %v)", e.Field, e.Value)
	case "max", "lte", "lt":
		return fmt.Sprintf("%s is above its maximum (got %v)", e.Field, e.Value)
	case "gt":
		return fmt.Sprintf("%s must be positive (got %v)", e.Field, e.Value)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value (got %v)", e.Field, e.Value)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for i := range e {
		messages = append(messages, e[i].Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var validate = validator.New()

// Validate checks a configuration against its struct tags.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.ValidationFailed, "config validation")
	}

	var verrs ValidationErrors
	for _, fe := range fieldErrs {
		verrs = append(verrs, ValidationError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}
	return errors.Wrap(verrs, errors.ValidationFailed, "invalid configuration")
}
