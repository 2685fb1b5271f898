package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so form errors line up with form inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// FieldErrors flattens a validation error into one message per field.
// Errors that did not come from the validator are returned under "__all__".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["__all__"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. Letters, digits and @/./+/-/_ only."
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
