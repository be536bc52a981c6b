// Package validation checks form and JSON input with validator/v10 and
// turns failures into VALIDATION errors keyed by form field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/bookbazaar/bookbazaar-server/internal/domain"
	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the marketplace rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report the name the client submitted: form tag first, then json.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "price", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePrice(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "year4", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) == 4
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors. Only the first
// failure per field is kept.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		if _, seen := fieldErrors[e.Field()]; seen {
			continue
		}
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

//nolint:gocyclo // One case per tag in use.
func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "e164":
		return "Enter a valid phone number in international format, e.g. +79991234567."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
	case "len":
		return fmt.Sprintf("Ensure this value has exactly %s characters.", e.Param())
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + e.Param() + "."
	case "eqfield":
		return "The two password fields didn't match."
	case "price":
		return fmt.Sprintf("Enter a non-negative number with at most %d digits before and 2 after the decimal point.", domain.MaxPriceIntegerDigits)
	case "year4":
		return "Ensure this value has exactly 4 characters."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "number":
		return "Enter a whole number."
	case "oneof":
		return "Select one of: " + e.Param() + "."
	default:
		return "Enter a valid value."
	}
}
