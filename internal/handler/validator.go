package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo's Validator
// interface. Struct tags on request DTOs drive the checks; domain rules
// that need repository access stay in the services.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// fieldErrors converts validator failures into response entries. Non-tag
// errors come back as a single unnamed entry.
func fieldErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: "failed on the '" + fe.Tag() + "' rule",
		})
	}
	return out
}
