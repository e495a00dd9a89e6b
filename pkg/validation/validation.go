// Package validation registers the project's custom binding rules.
package validation

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"marina-guard/backend/internal/worktime"
)

// Register adds hhmm and weekday to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		return fmt.Errorf("register hhmm: %w", err)
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		return fmt.Errorf("register weekday: %w", err)
	}
	return nil
}

// RegisterGin installs the rules on gin's default validator
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin validator engine is %T", binding.Validator.Engine())
	}
	return Register(v)
}

// HH:MM, 00:00 to 23:59
func validateClock(fl validator.FieldLevel) bool {
	return worktime.ValidClock(fl.Field().String())
}

// 0 = Sunday … 6 = Saturday
func validateWeekday(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= 0 && n <= 6
}

// Message turns a binding error into a short user-facing sentence
func Message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hhmm":
		return field + " must be a time of day in HH:MM format"
	case "weekday":
		return field + " must be a weekday between 0 (Sunday) and 6 (Saturday)"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "uuid":
		return field + " must be a valid id"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	case "unique":
		return field + " must not contain duplicates"
	case "gtfield":
		return field + " must be after " + fe.Param()
	case "min":
		return field + " is too short (min " + fe.Param() + ")"
	case "max":
		return field + " is too long (max " + fe.Param() + ")"
	default:
		return field + " is invalid"
	}
}
