package models

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports invalid client input, detected before any external call
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateStruct runs struct-tag validation and converts the first failure
// into a *ValidationError. messages is keyed by "Field.tag" first, then "tag".
func validateStruct(s interface{}, messages map[string]string) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return NewValidationError("", err.Error())
	}

	fe := fieldErrors[0]
	field := lowerFirst(fe.Field())
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return NewValidationError(field, msg)
	}
	if msg, ok := messages[fe.Tag()]; ok {
		return NewValidationError(field, msg)
	}
	return NewValidationError(field, fe.Error())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	switch s {
	case "AudioURL":
		return "audioUrl"
	}
	return strings.ToLower(s[:1]) + s[1:]
}
