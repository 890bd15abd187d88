package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a configuration value that failed a Validator
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func invalid(field string, value any, message string) error {
	return ValidationError{Field: field, Value: value, Message: message}
}

// Validator checks a single value
type Validator[T any] func(T) error

// ValidatorChain runs validators in order and stops at the first failure
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validate := range vc.validators {
		if err := validate(value); err != nil {
			return err
		}
	}
	return nil
}

// NotBlank rejects strings holding nothing but whitespace
func NotBlank(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return invalid(field, value, "cannot be blank")
		}
		return nil
	}
}

func SliceNotEmpty[T any](field string) Validator[[]T] {
	return func(value []T) error {
		if len(value) == 0 {
			return invalid(field, value, "cannot be empty")
		}
		return nil
	}
}

// ValidateEach applies item to every element. A failure is reported against
// "field[i]" with the item validator's message.
func ValidateEach[T any](field string, item Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, v := range values {
			err := item(v)
			if err == nil {
				continue
			}
			message := err.Error()
			var ve ValidationError
			if errors.As(err, &ve) {
				message = ve.Message
			}
			return invalid(fmt.Sprintf("%s[%d]", field, i), v, message)
		}
		return nil
	}
}

// Custom fails with message when ok returns false
func Custom[T any](field, message string, ok func(T) bool) Validator[T] {
	return func(value T) error {
		if !ok(value) {
			return invalid(field, value, message)
		}
		return nil
	}
}
