// Package validation wires go-playground/validator with the project's custom rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/pkg/errorbank"
)

// Validator checks request structs.
type Validator struct {
	validate *validator.Validate
}

// New registers the custom tags: password, washtype and role.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return auth.ValidatePassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("washtype", func(fl validator.FieldLevel) bool {
		return entity.WashType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return entity.Role(fl.Field().String()).Valid()
	})
	return &Validator{validate: v}
}

// Validate satisfies echo.Validator. Failures come back as a bad_request AppError
// whose details map each field to the rule it broke.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return errorbank.BadRequest("validation failed", errorbank.WithDetails(details))
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "password":
		return auth.ErrPasswordTooWeak.Error()
	case "washtype":
		return "must be one of simple_wash, power_clean, dry_clean"
	case "role":
		return "must be student or launderer"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
