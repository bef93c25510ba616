package entity

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError aggregates every failing rule of a candidate aggregate.
// All rules are evaluated; nothing short-circuits.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

var validate = validator.New()

// validateAggregated runs the struct rules and converts the result into a
// *ValidationError carrying one message per failing field.
func validateAggregated(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ValidationError{Messages: msgs}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "alphanum":
		return field + " must contain alphanumeric characters only"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
